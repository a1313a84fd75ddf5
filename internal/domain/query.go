package domain

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names understood by the FDSN event service.
const (
	ParamFormat  = "format"
	ParamLimit   = "limit"
	ParamMinMag  = "minmag"
	ParamOrderBy = "orderby"
)

// MaxLimit is the largest page size the FDSN event service accepts.
const MaxLimit = 20000

// validOrderBy lists the sort orders accepted by the FDSN event service.
var validOrderBy = map[string]bool{
	"time":          true,
	"time-asc":      true,
	"magnitude":     true,
	"magnitude-asc": true,
}

// ValidOrderBy reports whether s is a sort order the feed accepts.
func ValidOrderBy(s string) bool {
	return validOrderBy[s]
}

// ParseMagnitude parses a minimum-magnitude value. NaN and infinities are
// rejected since the feed does not accept them.
func ParseMagnitude(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// Params returns the query parameters sent to the feed for this config.
func (q QueryConfig) Params() map[string]string {
	return map[string]string{
		ParamFormat:  q.Format,
		ParamLimit:   strconv.Itoa(q.Limit),
		ParamMinMag:  q.MinMagnitude,
		ParamOrderBy: q.OrderBy,
	}
}

// URL builds the fully-qualified feed URL for this config.
func (q QueryConfig) URL() string {
	return BuildURL(q.BaseEndpoint, q.Params())
}

// BuildURL appends params to base as URL-encoded query pairs. Any query
// already present on base is kept. BuildURL never fails: a base that does
// not parse is returned with the encoded query appended, and the error
// surfaces when the URL is fetched.
func BuildURL(base string, params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	u, err := url.Parse(base)
	if err != nil {
		return joinQuery(base, values.Encode())
	}

	existing := u.Query()
	for k, vs := range values {
		existing[k] = vs
	}
	u.RawQuery = existing.Encode()
	return u.String()
}

func joinQuery(base, query string) string {
	if query == "" {
		return base
	}
	if strings.Contains(base, "?") {
		return base + "&" + query
	}
	return base + "?" + query
}

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// featureCollection is the top level of a GeoJSON feed. Features is a
// pointer so a missing or null "features" key can be told apart from an
// empty array.
type featureCollection struct {
	Features *[]json.RawMessage `json:"features"`
}

type feature struct {
	Properties *featureProperties `json:"properties"`
}

type featureProperties struct {
	Mag   *float64        `json:"mag"`
	Place *string         `json:"place"`
	Time  json.RawMessage `json:"time"`
	URL   *string         `json:"url"`
}

// FeatureResult is the outcome of decoding one element of the "features"
// array: either an Event or the reason it was skipped.
type FeatureResult struct {
	Index int
	Event RawEvent
	Err   error
}

// OK reports whether the feature decoded cleanly.
func (r FeatureResult) OK() bool { return r.Err == nil }

// DecodeFeed parses a feed body into raw events in feed order. Features
// that are missing a required field or carry a wrong type are logged and
// skipped; they never abort the batch.
func DecodeFeed(body string, logger *slog.Logger) ([]RawEvent, error) {
	results, err := DecodeFeatures(body)
	if err != nil {
		return nil, err
	}
	events, _ := CollectEvents(results, logger)
	return events, nil
}

// DecodeFeatures parses the feed envelope and decodes each feature into a
// FeatureResult, one per array element, in order.
//
// It returns ErrEmptyInput for an empty or whitespace body and a
// *MalformedFeedError when the body is not a JSON object with a top-level
// "features" array.
func DecodeFeatures(body string) ([]FeatureResult, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyInput
	}

	var fc featureCollection
	if err := json.Unmarshal([]byte(body), &fc); err != nil {
		return nil, &MalformedFeedError{Reason: "invalid feed JSON", Err: err}
	}
	if fc.Features == nil {
		return nil, &MalformedFeedError{Reason: `missing "features" array`}
	}

	results := make([]FeatureResult, len(*fc.Features))
	for i, raw := range *fc.Features {
		event, err := decodeFeature(raw)
		results[i] = FeatureResult{Index: i, Event: event, Err: err}
	}
	return results, nil
}

// CollectEvents keeps the successful results in order and logs the rest.
// It returns the events and the number of skipped features.
func CollectEvents(results []FeatureResult, logger *slog.Logger) ([]RawEvent, int) {
	events := make([]RawEvent, 0, len(results))
	skipped := 0
	for _, r := range results {
		if !r.OK() {
			skipped++
			if logger != nil {
				logger.Warn("skipping malformed feature", "index", r.Index, "error", r.Err)
			}
			continue
		}
		events = append(events, r.Event)
	}
	return events, skipped
}

func decodeFeature(raw json.RawMessage) (RawEvent, error) {
	var f feature
	if err := json.Unmarshal(raw, &f); err != nil {
		return RawEvent{}, fmt.Errorf("decode feature: %w", err)
	}
	p := f.Properties
	if p == nil {
		return RawEvent{}, errors.New(`missing "properties"`)
	}

	switch {
	case p.Mag == nil:
		return RawEvent{}, errors.New(`missing "mag"`)
	case p.Place == nil:
		return RawEvent{}, errors.New(`missing "place"`)
	case isNull(p.Time):
		return RawEvent{}, errors.New(`missing "time"`)
	case p.URL == nil:
		return RawEvent{}, errors.New(`missing "url"`)
	}

	millis, err := parseMillis(p.Time)
	if err != nil {
		return RawEvent{}, err
	}

	return RawEvent{
		Magnitude:  *p.Mag,
		Place:      *p.Place,
		TimeMillis: millis,
		DetailURL:  *p.URL,
	}, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// parseMillis reads an epoch-millisecond timestamp. Any JSON number with an
// integral value is accepted, including exponent forms such as 1.7e12.
// Strings and fractional values are rejected.
func parseMillis(raw json.RawMessage) (int64, error) {
	if raw[0] == '"' {
		return 0, errors.New(`"time" is not a number`)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf(`decode "time": %w`, err)
	}
	if ms, err := n.Int64(); err == nil {
		return ms, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf(`"time" %s is not an integral millisecond value`, n)
	}
	return int64(f), nil
}

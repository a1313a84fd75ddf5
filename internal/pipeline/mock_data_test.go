package pipeline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/quake-feed-service/internal/adapter/http"
	"github.com/couchcryptid/quake-feed-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestService_WithMockFeed serves a saved USGS response (six features, two
// of them malformed) through the real client and checks every record.
func TestService_WithMockFeed(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("testdata", "significant_month.geojson"))
	require.NoError(t, err)

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	client := usgs.NewClient(time.Second, time.Second, 0, discardLogger())
	svc, metrics := newService(client)

	records, err := svc.Fetch(context.Background(), testQuery(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "format=geojson&limit=100&minmag=6&orderby=magnitude", gotQuery)

	cases := []struct {
		mag      string
		category int
		offset   string
		primary  string
		date     string
		time     string
	}{
		{"7.4", 7, "18 km SSW of", "Hualien City, Taiwan", "Apr 02, 2024", "10:48 PM"},
		{"6.4", 6, "Gulf", "of California", "Apr 18, 2024", "4:00 PM"}, // split defect, see domain tests
		{"6.1", 6, domain.NearPrefix, "Kermadec Islands region", "Apr 19, 2024", "4:13 AM"},
		{"6.0", 6, "5 km WSW of", "Ishikawa, Japan", "Apr 26, 2024", "5:40 AM"},
	}
	require.Len(t, records, len(cases))

	for i, tc := range cases {
		r := records[i]
		assert.Equal(t, tc.mag, r.FormattedMagnitude, "record %d", i)
		assert.Equal(t, tc.category, r.MagnitudeCategory, "record %d", i)
		assert.Equal(t, tc.offset, r.LocationOffset, "record %d", i)
		assert.Equal(t, tc.primary, r.LocationPrimary, "record %d", i)
		assert.Equal(t, tc.date, r.Date, "record %d", i)
		assert.Equal(t, tc.time, r.Time, "record %d", i)
		assert.Contains(t, r.DetailURL, "https://earthquake.usgs.gov/earthquakes/eventpage/", "record %d", i)
	}

	assert.InDelta(t, 4, testutil.ToFloat64(metrics.FeaturesDecoded), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.FeaturesSkipped), 0)
}

func TestService_WithMockFeed_Cached(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("testdata", "significant_month.geojson"))
	require.NoError(t, err)

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	client := usgs.NewClient(time.Second, time.Second, 0, discardLogger())
	cached := usgs.NewCachedFetcher(client, time.Minute, metrics)
	svc, _ := newService(cached)

	first, err := svc.Fetch(context.Background(), testQuery(srv.URL))
	require.NoError(t, err)
	second, err := svc.Fetch(context.Background(), testQuery(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FeedCache.WithLabelValues("hit")), 0)
}

// TestService_PrimeMakesServerReady checks that the startup query alone
// turns /readyz green, with no /earthquakes traffic.
func TestService_PrimeMakesServerReady(t *testing.T) {
	var earthquakeCalls int
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer feed.Close()

	client := usgs.NewClient(time.Second, time.Second, 0, discardLogger())
	svc, _ := newService(client)
	q := testQuery(feed.URL)

	counting := querierFunc(func(ctx context.Context, q domain.QueryConfig) ([]domain.Earthquake, error) {
		earthquakeCalls++
		return svc.Fetch(ctx, q)
	})
	srv := httpadapter.NewServer(":0", counting, svc, q, discardLogger())

	readyz := func() int {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusServiceUnavailable, readyz())

	require.NoError(t, svc.Prime(context.Background(), q, time.Second))

	assert.Equal(t, http.StatusOK, readyz())
	assert.Zero(t, earthquakeCalls)
}

type querierFunc func(ctx context.Context, q domain.QueryConfig) ([]domain.Earthquake, error)

func (f querierFunc) Fetch(ctx context.Context, q domain.QueryConfig) ([]domain.Earthquake, error) {
	return f(ctx, q)
}

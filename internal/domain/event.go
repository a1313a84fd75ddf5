package domain

// QueryConfig describes one request against the event feed. The HTTP
// surface and CLI build it from defaults plus user overrides.
type QueryConfig struct {
	BaseEndpoint string
	MinMagnitude string
	OrderBy      string
	Limit        int
	Format       string
}

// RawEvent is one feature decoded from the feed, before enrichment.
type RawEvent struct {
	Magnitude  float64
	Place      string // USGS place string, e.g. "5km SSE of Home, CA"
	TimeMillis int64  // origin time, ms since the UNIX epoch
	DetailURL  string
}

// Earthquake is the display-ready record returned to callers.
type Earthquake struct {
	Magnitude          float64 `json:"magnitude"`
	FormattedMagnitude string  `json:"formatted_magnitude"`
	MagnitudeCategory  int     `json:"magnitude_category"` // 1–10, selects a color tier
	LocationOffset     string  `json:"location_offset"`
	LocationPrimary    string  `json:"location_primary"`
	Date               string  `json:"date"`
	Time               string  `json:"time"`
	DetailURL          string  `json:"url"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

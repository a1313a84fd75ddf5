package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// NearPrefix stands in for the offset when a place has no "<dist> <dir> of" part.
	NearPrefix = "Near the "

	dateLayout = "Jan 02, 2006"
	timeLayout = "3:04 PM"

	minCategory = 1
	maxCategory = 10
)

// Enrich derives the display fields for a raw event. It is a pure function
// and accepts any input, including negative magnitudes and timestamps.
func Enrich(raw RawEvent) Earthquake {
	offset, primary := SplitLocation(raw.Place)
	date, clock := FormatTimestamp(raw.TimeMillis)

	return Earthquake{
		Magnitude:          raw.Magnitude,
		FormattedMagnitude: FormatMagnitude(raw.Magnitude),
		MagnitudeCategory:  MagnitudeCategory(raw.Magnitude),
		LocationOffset:     offset,
		LocationPrimary:    primary,
		Date:               date,
		Time:               clock,
		DetailURL:          raw.DetailURL,
	}
}

// EnrichAll enriches events in order.
func EnrichAll(events []RawEvent) []Earthquake {
	out := make([]Earthquake, len(events))
	for i, e := range events {
		out[i] = Enrich(e)
	}
	return out
}

// FormatMagnitude rounds half-up to one decimal and always prints the
// decimal, so 4 renders as "4.0".
func FormatMagnitude(mag float64) string {
	rounded := mag
	// Past 1e15 a float64 has no fractional digit left, and mag*10 can overflow.
	if math.Abs(mag) < 1e15 {
		rounded = math.Floor(mag*10+0.5) / 10
	}
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	return fmt.Sprintf("%.1f", rounded)
}

// MagnitudeCategory maps a magnitude to its color tier:
//
//	floor(mag) <= 1  -> 1 (covers 0 and negative magnitudes)
//	2..9             -> floor(mag)
//	floor(mag) >= 10 -> 10 ("10-plus")
func MagnitudeCategory(mag float64) int {
	if math.IsNaN(mag) {
		return minCategory
	}
	f := math.Floor(mag)
	switch {
	case f >= maxCategory:
		return maxCategory
	case f <= minCategory:
		return minCategory
	default:
		return int(f)
	}
}

// SplitLocation splits a USGS place string into its offset and primary
// parts, e.g. "5km SSE of Home, CA" -> ("5km SSE of", "Home, CA").
//
// The split point is the first 'f' anywhere in place once place is known to
// contain "of", and exactly one character after it is dropped. Place names
// with an 'f' before the offset phrase ("Gulf of California") split in the
// wrong spot; see TestSplitLocation_KnownDefects.
func SplitLocation(place string) (offset, primary string) {
	if !strings.Contains(place, "of") {
		return NearPrefix, place
	}

	cut := strings.IndexByte(place, 'f') + 1
	offset = place[:cut]
	rest := place[cut:]
	if rest != "" {
		_, size := utf8.DecodeRuneInString(rest)
		rest = rest[size:]
	}
	return offset, rest
}

// FormatTimestamp renders a UNIX millisecond timestamp as ("Jan 02, 2006",
// "3:04 PM") in UTC.
func FormatTimestamp(ms int64) (date, clock string) {
	t := time.UnixMilli(ms).UTC()
	return t.Format(dateLayout), t.Format(timeLayout)
}

// Package domain models USGS earthquake feed data and the display fields
// derived from it.
//
// # Data Source
//
// Events come from the USGS FDSN event web service,
// https://earthquake.usgs.gov/fdsnws/event/1/query, requested with
// format=geojson. The query is shaped by four parameters: format, limit,
// minmag (minimum magnitude, sent as text) and orderby (one of time,
// time-asc, magnitude, magnitude-asc). See [BuildURL].
//
// # Feed Format
//
// The body is a GeoJSON FeatureCollection. Only feature properties are read:
//
//	{"features": [{"properties": {"mag": 6.2, "place": "10km N of Town",
//	                              "time": 1000000000000, "url": "https://..."}}]}
//
// mag is a number, place and url are strings, time is integer milliseconds
// since the UNIX epoch. A feature missing any of these, or carrying the
// wrong type, is skipped and the rest of the batch is kept. See
// [DecodeFeatures].
//
// # Display Fields
//
// Magnitude:
//
//	Rounded half-up to one decimal and always printed with it: 4 -> "4.0".
//
// Magnitude category (color tier):
//
//	floor(mag), clamped so that 0 and below map to 1 and 10 and above map
//	to 10 ("10-plus").
//
// Location:
//
//	"<distance> <compass> of <place>" -> offset "<distance> <compass> of",
//	primary "<place>", e.g. "5km SSE of Home, CA". Places with no offset
//	phrase get the offset "Near the ". The split is a plain substring
//	heuristic; see [SplitLocation] for its known defect.
//
// Date and time:
//
//	Formatted in UTC as "Jan 02, 2006" and "3:04 PM" (12-hour, no leading
//	zero on the hour).
package domain

package provider

import (
	"encoding/json"
	"sort"
)

// parseFeed decodes the zone feed. Aircraft arrive as positional arrays
// keyed by the provider's flight id; housekeeping keys (full_count, version,
// stats) are not arrays and are skipped.
//
//	"2f3a1b": ["3C6589", 53.63, 9.98, 270, 3500, 180, "1000", "F-EDDH1", "A388",
//	           "A6-EOA", 1700000000, "HAM", "DXB", "EK60", 0, 1600, "UAE60", 0, "UAE"]
func parseFeed(body []byte) ([]LiveFlight, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	flights := make([]LiveFlight, 0, len(ids))
	for _, id := range ids {
		var array []any
		if err := json.Unmarshal(entries[id], &array); err != nil {
			continue
		}
		flights = append(flights, decodeFeedEntry(id, array))
	}
	return flights, nil
}

func decodeFeedEntry(id string, array []any) LiveFlight {
	i := 0

	// Each getter consumes one element; a short or mistyped entry yields
	// zero values rather than failing the whole feed.
	next := func() any {
		if i >= len(array) {
			i++
			return nil
		}
		v := array[i]
		i++
		return v
	}
	getstring := func() string {
		s, _ := next().(string)
		return s
	}
	getfloat := func() (float64, bool) {
		f, ok := next().(float64)
		return f, ok
	}
	getint := func() int {
		f, _ := getfloat()
		return int(f)
	}
	getposition := func() *float64 {
		if f, ok := getfloat(); ok {
			return &f
		}
		return nil
	}

	f := LiveFlight{ID: id}
	f.ICAO24 = getstring()
	f.Latitude = getposition()
	f.Longitude = getposition()
	f.Heading = getint()
	f.Altitude = getint()
	f.GroundSpeed = getint()
	f.Squawk = getstring()
	f.Radar = getstring()
	f.AircraftCode = getstring()
	f.Registration = getstring()
	ts, _ := getfloat()
	f.Timestamp = int64(ts)
	f.OriginIATA = getstring()
	f.DestinationIATA = getstring()
	f.Number = getstring()
	f.OnGround = getint()
	f.VerticalSpeed = getint()
	f.Callsign = getstring()
	_ = getint() // glider flag
	f.AirlineICAO = getstring()

	return f
}

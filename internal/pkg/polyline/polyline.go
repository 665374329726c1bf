// Package polyline parses the delimited coordinate strings returned by the
// AMap directions API: points separated by ";", each point "lon,lat".
//
// The component order is longitude first. That is reversed from the
// conventional lat,lon and must stay that way: swapping it silently corrupts
// all downstream geometry.
package polyline

import (
	"strconv"
	"strings"

	"github.com/wayfinderhq/wayfinder/internal/core/domain"
)

// Decode parses a polyline string into an ordered point sequence.
//
// Malformed segments (wrong token count, unparseable or non-finite numbers,
// out-of-range coordinates) are silently skipped rather than surfaced as
// errors: the decoder never fails, it degrades to a shorter sequence.
// Empty input yields an empty sequence.
func Decode(raw string) []domain.GeoPoint {
	if raw == "" {
		return nil
	}

	segments := strings.Split(raw, ";")
	points := make([]domain.GeoPoint, 0, len(segments))

	for _, segment := range segments {
		parts := strings.Split(segment, ",")
		if len(parts) != 2 {
			continue
		}

		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			continue
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			continue
		}

		p := domain.GeoPoint{Lat: lat, Lon: lon}
		if !p.Valid() {
			continue
		}
		points = append(points, p)
	}

	return points
}

// Encode renders points back into the wire format accepted by Decode.
func Encode(points []domain.GeoPoint) string {
	if len(points) == 0 {
		return ""
	}

	var b strings.Builder
	for i, p := range points {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.FormatFloat(p.Lon, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', -1, 64))
	}
	return b.String()
}

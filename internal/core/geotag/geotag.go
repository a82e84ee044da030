// Package geotag derives cat coordinates from the GPS metadata of a photo.
//
// Geotagging is best effort: every failure path yields
// domain.DefaultCoordinates so that creating a cat never fails because of
// its photo.
package geotag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/pkg/metrics"
)

var errNoGPS = errors.New("geotag: no gps data")

// Extract reads the GPS position of the image in r. On error the fallback
// coordinates are returned alongside it.
func Extract(r io.Reader) (domain.Coordinates, error) {
	c, err := extract(r)
	if err != nil {
		return domain.DefaultCoordinates, err
	}
	return c, nil
}

func extract(r io.Reader) (c domain.Coordinates, err error) {
	// goexif panics on some malformed IFDs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("geotag: decode panic: %v", rec)
		}
	}()

	x, err := exif.Decode(r)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return domain.Coordinates{}, fmt.Errorf("geotag: decode exif: %w", err)
	}

	lat, err := readAxis(x, exif.GPSLatitude, exif.GPSLatitudeRef, "N")
	if err != nil {
		return domain.Coordinates{}, err
	}
	lng, err := readAxis(x, exif.GPSLongitude, exif.GPSLongitudeRef, "E")
	if err != nil {
		return domain.Coordinates{}, err
	}
	if math.Abs(lat) > 90 || math.Abs(lng) > 180 {
		return domain.Coordinates{}, fmt.Errorf("geotag: out of range (%f, %f)", lat, lng)
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, nil
}

// readAxis converts a degree/minute/second triplet plus hemisphere
// reference into decimal degrees.
func readAxis(x *exif.Exif, value, ref exif.FieldName, defaultRef string) (float64, error) {
	tag, err := x.Get(value)
	if err != nil {
		return 0, errNoGPS
	}
	if tag.Count < 3 {
		return 0, fmt.Errorf("geotag: %s has %d components", value, tag.Count)
	}

	var dms [3]float64
	for i := range dms {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return 0, fmt.Errorf("geotag: %s[%d]: %w", value, i, err)
		}
		if den == 0 {
			return 0, fmt.Errorf("geotag: %s[%d] has zero denominator", value, i)
		}
		dms[i] = float64(num) / float64(den)
	}

	hemisphere := defaultRef
	if refTag, err := x.Get(ref); err == nil {
		if s, err := refTag.StringVal(); err == nil {
			if s = strings.ToUpper(strings.TrimRight(strings.TrimSpace(s), "\x00")); s != "" {
				hemisphere = s[:1]
			}
		}
	}

	return ToDecimal(dms, hemisphere), nil
}

// ToDecimal converts [deg, min, sec] to decimal degrees, negated for the
// southern and western hemispheres.
func ToDecimal(dms [3]float64, hemisphere string) float64 {
	d := dms[0] + dms[1]/60 + dms[2]/3600
	if hemisphere == "S" || hemisphere == "W" {
		return -d
	}
	return d
}

// Extractor wraps Extract with logging and metrics.
type Extractor struct {
	log zerolog.Logger
}

func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// Coordinates returns the position of the photo in r or the fallback. A
// cancelled ctx skips decoding.
func (e *Extractor) Coordinates(ctx context.Context, r io.Reader) domain.Coordinates {
	if err := ctx.Err(); err != nil {
		metrics.GeotagResultsTotal.WithLabelValues("fallback").Inc()
		e.log.Debug().Ctx(ctx).Err(err).Msg("geotag skipped")
		return domain.DefaultCoordinates
	}
	c, err := Extract(r)
	if err != nil {
		metrics.GeotagResultsTotal.WithLabelValues("fallback").Inc()
		e.log.Debug().Ctx(ctx).Err(err).Msg("geotag fallback")
		return c
	}
	metrics.GeotagResultsTotal.WithLabelValues("extracted").Inc()
	return c
}

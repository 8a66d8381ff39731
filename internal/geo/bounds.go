package geo

import (
	"github.com/wroge/wgs84"

	"github.com/tripcast/tripcast/pkg/core"
)

// Bounds is the bounding box of a path, in WGS84 degrees and projected to
// EPSG:3857 meters for web-mercator map clients.
type Bounds struct {
	MinLat  float64    `json:"minLat"`
	MinLng  float64    `json:"minLng"`
	MaxLat  float64    `json:"maxLat"`
	MaxLng  float64    `json:"maxLng"`
	Min3857 [2]float64 `json:"min3857"`
	Max3857 [2]float64 `json:"max3857"`
}

// BoundsOf computes the envelope of a path. Returns false for an empty path.
func BoundsOf(path []core.Position) (Bounds, bool) {
	ls, err := LineStringOf(path)
	if err != nil {
		return Bounds{}, false
	}

	env := ls.Envelope()
	min, okMin := env.Min().XY()
	max, okMax := env.Max().XY()
	if !okMin || !okMax {
		return Bounds{}, false
	}

	f := wgs84.EPSG().Transform(4326, 3857)
	minX, minY, _ := f(min.X, min.Y, 0)
	maxX, maxY, _ := f(max.X, max.Y, 0)

	return Bounds{
		MinLat:  min.Y,
		MinLng:  min.X,
		MaxLat:  max.Y,
		MaxLng:  max.X,
		Min3857: [2]float64{minX, minY},
		Max3857: [2]float64{maxX, maxY},
	}, true
}

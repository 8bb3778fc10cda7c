package station

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/zclconf/go-cty/cty"

	"github.com/secretyv/ASur/pkg/literal"
)

// Polygon is the boundary of an overflow point in projected coordinates.
type Polygon []r2.Point

// Bounds returns the bounding rectangle of the polygon.
func (p Polygon) Bounds() r2.Rect {
	return r2.RectFromPoints(p...)
}

// Centre returns the centre of the bounding rectangle.
func (p Polygon) Centre() r2.Point {
	if len(p) == 0 {
		return r2.Point{}
	}
	return p.Bounds().Center()
}

func decodePolygon(val cty.Value) (Polygon, error) {
	elems, err := literal.Elements(val)
	if err != nil {
		return nil, err
	}
	poly := make(Polygon, len(elems))
	for i, e := range elems {
		x, y, err := literal.Pair(e)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		poly[i] = r2.Point{X: x, Y: y}
	}
	return poly, nil
}

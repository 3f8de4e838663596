package layer

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestLoadShapefileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadShapefile(filepath.Join(t.TempDir(), "absent.shp"), "parcels")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestShapeToGeom(t *testing.T) {
	t.Parallel()

	t.Run("point", func(t *testing.T) {
		t.Parallel()
		g := shapeToGeom(&shp.Point{X: -87.35, Y: 41.6})
		p, ok := g.(*geom.Point)
		require.True(t, ok)
		assert.Equal(t, -87.35, p.X())
		assert.Equal(t, 41.6, p.Y())
	})

	t.Run("point z drops elevation", func(t *testing.T) {
		t.Parallel()
		g := shapeToGeom(&shp.PointZ{X: -87.35, Y: 41.6, Z: 182})
		p, ok := g.(*geom.Point)
		require.True(t, ok)
		assert.Equal(t, 41.6, p.Y())
	})

	t.Run("unsupported shape", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, shapeToGeom(&shp.PolyLine{}))
	})
}

func TestPolygonToMultiPolygon(t *testing.T) {
	t.Parallel()

	square := []shp.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0},
	}
	offset := []shp.Point{
		{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 6}, {X: 5, Y: 5},
	}

	t.Run("single part", func(t *testing.T) {
		t.Parallel()
		p := &shp.Polygon{NumParts: 1, Parts: []int32{0}, Points: square}
		g := polygonToMultiPolygon(p)
		mp, ok := g.(*geom.MultiPolygon)
		require.True(t, ok)
		assert.Equal(t, 1, mp.NumPolygons())
	})

	t.Run("two parts become two polygons", func(t *testing.T) {
		t.Parallel()
		points := append(append([]shp.Point{}, square...), offset...)
		p := &shp.Polygon{NumParts: 2, Parts: []int32{0, 5}, Points: points}
		g := polygonToMultiPolygon(p)
		mp, ok := g.(*geom.MultiPolygon)
		require.True(t, ok)
		require.Equal(t, 2, mp.NumPolygons())

		c := mp.Polygon(1).LinearRing(0).Coord(0)
		assert.Equal(t, 5.0, c[0])
	})

	t.Run("empty polygon", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))
		assert.Nil(t, polygonToMultiPolygon(nil))
	})
}

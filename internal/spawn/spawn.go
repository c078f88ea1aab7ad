// Package spawn computes candidate spawn coordinates from tile map obstruction data.
package spawn

import (
	"errors"
	"fmt"
)

// FreeTileIndex marks a tile without collision in tilemap index layers.
const FreeTileIndex = -1

var (
	ErrEmptyMap      = errors.New("map has no tiles")
	ErrGridMismatch  = errors.New("grid length does not match map size")
	ErrTooLarge      = errors.New("map exceeds tile limit")
	ErrBadTileSize   = errors.New("tile size must be positive")
	ErrBadScaleValue = errors.New("scale must be positive")
)

// Point is a world coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Map describes an obstruction grid in tiles together with the factors that
// convert a tile column/row into world coordinates.
type Map struct {
	// Obstructed is row-major, Width*Height entries.
	Obstructed []bool
	Width      int
	Height     int
	TileWidth  float64
	TileHeight float64
	ScaleX     float64
	ScaleY     float64
}

// FromTileIndices converts a tilemap collision layer into an obstruction grid.
// Any index other than FreeTileIndex is treated as solid.
func FromTileIndices(indices []int) []bool {
	grid := make([]bool, len(indices))
	for i, idx := range indices {
		grid[i] = idx != FreeTileIndex
	}
	return grid
}

// Validate checks map dimensions. maxTiles <= 0 disables the size limit.
func (m Map) Validate(maxTiles int) error {
	if m.Width <= 0 || m.Height <= 0 {
		return ErrEmptyMap
	}
	tiles := m.Width * m.Height
	if maxTiles > 0 && tiles > maxTiles {
		return fmt.Errorf("%w: %d > %d", ErrTooLarge, tiles, maxTiles)
	}
	if len(m.Obstructed) != tiles {
		return fmt.Errorf("%w: got %d, want %d", ErrGridMismatch, len(m.Obstructed), tiles)
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return ErrBadTileSize
	}
	if m.ScaleX <= 0 || m.ScaleY <= 0 {
		return ErrBadScaleValue
	}
	return nil
}

// TileOrigin returns the world coordinate of the tile at column x, row y.
func (m Map) TileOrigin(x, y int) Point {
	return Point{
		X: float64(x) * m.TileWidth * m.ScaleX,
		Y: float64(y) * m.TileHeight * m.ScaleY,
	}
}

// Resolve returns the world coordinates of every free tile whose origin is not
// exactly equal to one of the occupied positions, in row-major order.
// The map is expected to be valid.
func Resolve(m Map, occupied []Point) []Point {
	taken := make(map[Point]struct{}, len(occupied))
	for _, p := range occupied {
		taken[p] = struct{}{}
	}

	positions := make([]Point, 0)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Obstructed[y*m.Width+x] {
				continue
			}
			origin := m.TileOrigin(x, y)
			if _, ok := taken[origin]; ok {
				continue
			}
			positions = append(positions, origin)
		}
	}
	return positions
}

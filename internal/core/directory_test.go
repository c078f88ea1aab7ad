package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/arena-server/internal/spawn"
)

func TestDirectoryUpdateCreatesEntry(t *testing.T) {
	d := NewDirectory()

	st := d.Update("p1", PlayerPatch{})
	assert.Equal(t, "p1", st.Name)
	assert.Equal(t, DirectionRight, st.Direction)
	assert.True(t, st.Active)
	assert.False(t, st.Positioned)

	x := 4.0
	st = d.Update("p1", PlayerPatch{X: &x})
	assert.False(t, st.Positioned, "half a coordinate is ignored")

	y := 8.0
	name := "Neo"
	st = d.Update("p1", PlayerPatch{Name: &name, X: &x, Y: &y, Direction: DirectionLeft})
	assert.Equal(t, "Neo", st.Name)
	assert.Equal(t, spawn.Point{X: 4, Y: 8}, st.Position())
	assert.Equal(t, DirectionLeft, st.Direction)
	assert.Equal(t, 1, d.Len())
}

func TestDirectoryReturnsCopies(t *testing.T) {
	d := NewDirectory()
	d.Update("p1", PlayerPatch{ActiveKeys: map[string]bool{"up": true}})

	st, ok := d.Get("p1")
	require.True(t, ok)
	st.ActiveKeys["up"] = false
	st.Name = "changed"

	again, _ := d.Get("p1")
	assert.True(t, again.ActiveKeys["up"])
	assert.Equal(t, "p1", again.Name)
}

func TestDirectoryDeathKeepsEntry(t *testing.T) {
	d := NewDirectory()
	lives := 1
	d.Update("p1", PlayerPatch{Lives: &lives})

	st, ok := d.Deactivate("p1")
	require.True(t, ok)
	assert.False(t, st.Active)
	assert.Zero(t, st.Lives)

	st, _ = d.Deactivate("p1")
	assert.Zero(t, st.Lives, "lives never go negative")

	_, ok = d.Get("p1")
	assert.True(t, ok)

	st, _ = d.Activate("p1")
	assert.True(t, st.Active)

	_, ok = d.Deactivate("ghost")
	assert.False(t, ok)
}

func TestDirectoryPositions(t *testing.T) {
	d := NewDirectory()
	pos := func(id string, x, y float64) {
		d.Update(id, PlayerPatch{X: &x, Y: &y})
	}
	pos("a", 1, 1)
	pos("b", 2, 2)
	d.Update("c", PlayerPatch{})

	assert.ElementsMatch(t, []spawn.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, d.Positions(nil))
	assert.Equal(t, []spawn.Point{{X: 2, Y: 2}}, d.Positions([]string{"b", "c", "ghost"}))
	assert.Empty(t, d.Positions([]string{}))
}

func TestDirectorySnapshotSortedByID(t *testing.T) {
	d := NewDirectory()
	for _, id := range []string{"c", "a", "b"} {
		d.Update(id, PlayerPatch{})
	}
	snap := d.Snapshot([]string{"c", "a", "b", "ghost"})
	require.Len(t, snap, 3)
	assert.Equal(t, "a", snap[0].ID)
	assert.Equal(t, "c", snap[2].ID)

	assert.True(t, d.Remove("a"))
	assert.False(t, d.Remove("a"))
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]bool{"": true, "left": true, "right": true, "up": false, "LEFT": false} {
		_, ok := ParseDirection(in)
		assert.Equal(t, want, ok, in)
	}
}

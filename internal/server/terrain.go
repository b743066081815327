package server

import "github.com/tickrealm/core/internal/model"

// terrainEpsilon is the small vertical offset added above ground height on
// every server-side position write (spec §3: "A player's position is
// always clamped to terrain height + small epsilon").
const terrainEpsilon = 10

// TerrainHeightProvider is the external geodata collaborator (spec §1):
// the core queries it, never computes height itself.
type TerrainHeightProvider interface {
	HeightAt(x, z int32) (height int32, ok bool)
}

// FlatTerrain is a constant-height TerrainHeightProvider used when no real
// geodata source is wired in (tests, and any map region geodata doesn't
// cover).
type FlatTerrain struct {
	Height int32
}

func (f FlatTerrain) HeightAt(x, z int32) (int32, bool) {
	return f.Height, true
}

// clampToTerrain applies the terrain-height + epsilon clamp to loc's Y.
func (w *World) clampToTerrain(loc model.Location) model.Location {
	if w.Terrain == nil {
		return loc
	}
	if h, ok := w.Terrain.HeightAt(loc.X, loc.Z); ok {
		loc.Y = h + terrainEpsilon
	}
	return loc
}

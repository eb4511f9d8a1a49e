package entity

import (
	"math"
	"math/rand"
)

const (
	TileSize   = 40
	RoomWidth  = 800
	RoomHeight = 600

	MapCols = RoomWidth / TileSize  // 20
	MapRows = RoomHeight / TileSize // 15
)

const (
	TileFloor = iota
	TileWall
	TileRug
	TileGold
	TileTrigger
)

// maxSpawnDraws bounds random spawn attempts so a corrupted map cannot spin forever.
const maxSpawnDraws = 1000

type TileMap [][]int

// NewBaseMap - builds the default room layout: outer ring walls, interior floor.
func NewBaseMap() TileMap {
	tileMap := make(TileMap, MapRows)

	for row := range tileMap {
		tileMap[row] = make([]int, MapCols)

		for col := range tileMap[row] {
			if row == 0 || row == MapRows-1 || col == 0 || col == MapCols-1 {
				tileMap[row][col] = TileWall
			}
		}
	}

	return tileMap
}

// IsWalkableCode - reports whether a tile code may be occupied by a player.
func IsWalkableCode(code int) bool {
	switch code {
	case TileFloor, TileRug, TileGold, TileTrigger:
		return true
	default:
		return false
	}
}

// IsKnownTileCode - reports whether a tile code is part of the tile set at all.
func IsKnownTileCode(code int) bool {
	return code >= TileFloor && code <= TileTrigger
}

// InBounds - reports whether (row, col) is inside the grid.
func (that TileMap) InBounds(row, col int) bool {
	return row >= 0 && row < MapRows && col >= 0 && col < MapCols
}

// IsBorder - reports whether (row, col) lies on the outer ring.
func (that TileMap) IsBorder(row, col int) bool {
	return row == 0 || row == MapRows-1 || col == 0 || col == MapCols-1
}

// CanOccupy - resolves continuous pixel coordinates to a cell and checks walkability.
func (that TileMap) CanOccupy(x, y float64) bool {
	col := int(math.Floor(x / TileSize))
	row := int(math.Floor(y / TileSize))

	if !that.InBounds(row, col) {
		return false
	}

	return IsWalkableCode(that[row][col])
}

// RandomSpawn - picks a uniformly random walkable cell and returns its pixel center.
// Falls back to a deterministic scan if random draws keep missing.
func (that TileMap) RandomSpawn() (float64, float64) {
	for i := 0; i < maxSpawnDraws; i++ {
		row := rand.Intn(MapRows) //nolint:gosec // spawn points are not security sensitive
		col := rand.Intn(MapCols) //nolint:gosec // same as above

		if IsWalkableCode(that[row][col]) {
			return cellCenter(row, col)
		}
	}

	for row := 0; row < MapRows; row++ {
		for col := 0; col < MapCols; col++ {
			if IsWalkableCode(that[row][col]) {
				return cellCenter(row, col)
			}
		}
	}

	return cellCenter(1, 1)
}

// Clone - deep-copies the grid so snapshots survive later edits.
func (that TileMap) Clone() TileMap {
	clone := make(TileMap, len(that))

	for row := range that {
		clone[row] = make([]int, len(that[row]))
		copy(clone[row], that[row])
	}

	return clone
}

func cellCenter(row, col int) (float64, float64) {
	return float64(col*TileSize + TileSize/2), float64(row*TileSize + TileSize/2)
}

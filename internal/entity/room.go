package entity

import "slices"

const (
	LobbyRoomID   = "lobby"
	LobbyRoomName = "Lobby"
)

// ItemGameTrigger is the unlockable the room owner must hold before a
// game-trigger tile may be placed in the room.
const ItemGameTrigger = "game_trigger"

// Furniture is one placed item. At most one placement exists per (row, col).
type Furniture struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	ItemID string `json:"item_id"`
}

// Room is the durable room document. It survives across connections; the
// in-memory copy is the source of truth and is persisted best-effort on every
// structural mutation.
type Room struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Owner     string      `json:"owner,omitempty"`
	Map       TileMap     `json:"map"`
	Furniture []Furniture `json:"furniture"`
}

func NewRoom(id, name, owner string) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		Owner:     owner,
		Map:       NewBaseMap(),
		Furniture: []Furniture{},
	}
}

// NewLobby - builds the well-known unowned lobby room.
func NewLobby() *Room {
	return NewRoom(LobbyRoomID, LobbyRoomName, "")
}

func (that *Room) IsOwned() bool {
	return that.Owner != ""
}

// CanEdit - applies the ownership rule: an owned room only accepts edits from
// the owning account, an unowned room accepts edits from anyone.
func (that *Room) CanEdit(accountID string) bool {
	if !that.IsOwned() {
		return true
	}

	return accountID != "" && accountID == that.Owner
}

// FurnitureAt - returns the placement occupying (row, col), if any.
func (that *Room) FurnitureAt(row, col int) (Furniture, bool) {
	for _, item := range that.Furniture {
		if item.Row == row && item.Col == col {
			return item, true
		}
	}

	return Furniture{}, false
}

// PlaceFurniture - places an item at (row, col), replacing any prior occupant.
func (that *Room) PlaceFurniture(row, col int, itemID string) {
	that.RemoveFurniture(row, col)
	that.Furniture = append(that.Furniture, Furniture{Row: row, Col: col, ItemID: itemID})
}

// RemoveFurniture - clears (row, col); reports whether anything was removed.
func (that *Room) RemoveFurniture(row, col int) bool {
	for i, item := range that.Furniture {
		if item.Row == row && item.Col == col {
			that.Furniture = append(that.Furniture[:i], that.Furniture[i+1:]...)
			return true
		}
	}

	return false
}

// Clone - deep-copies the room so snapshots can be marshaled after the lock
// protecting the live copy is released.
func (that *Room) Clone() *Room {
	clone := *that
	clone.Map = that.Map.Clone()
	clone.Furniture = slices.Clone(that.Furniture)

	return &clone
}

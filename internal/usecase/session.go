package usecase

import (
	"log/slog"
	"sync"

	"github.com/pixelhall/pixelhall-backend/internal/entity"
)

// SessionManager is the exclusive owner of player lifetimes: records are
// created on connect and destroyed on disconnect, nowhere else.
type SessionManager struct {
	logger *slog.Logger

	mu      sync.Mutex
	players map[string]*entity.Player
}

func NewSessionManager(logger *slog.Logger) *SessionManager {
	return &SessionManager{
		logger:  logger,
		players: make(map[string]*entity.Player),
	}
}

// Create - allocates the player record for a new connection: nameless, random
// color, zero position, no room.
func (that *SessionManager) Create(connID string) *entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := entity.NewPlayer(connID)
	that.players[connID] = player

	that.logger.Info("player connected", "playerID", connID)

	return player
}

func (that *SessionManager) Get(connID string) (*entity.Player, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[connID]

	return player, ok
}

func (that *SessionManager) Destroy(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.players, connID)

	that.logger.Info("player disconnected", "playerID", connID)
}

// Ready - applies the post-login identity update to the caller's own record.
// Empty fields are left untouched, so repeating the call is harmless.
func (that *SessionManager) Ready(connID, name string, appearance *entity.Appearance, accountID string) (entity.Player, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[connID]
	if !ok {
		return entity.Player{}, false
	}

	if name != "" {
		player.Name = name
	}

	if appearance != nil {
		player.Appearance = *appearance
	}

	if accountID != "" {
		player.AccountID = accountID
	}

	return *player, true
}

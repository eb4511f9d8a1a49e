// Package broadcast owns the connection registry and delivers events to
// recipient sets derived by the managers. Events only ever reach the members
// of the target room or the two participants of a match; the room list pushed
// on room creation is the single deliberate all-clients event.
package broadcast

import (
	"context"
	"log/slog"
	"sync"
)

// Envelope is the wire shape of every server-to-client event.
type Envelope struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

// Sender is one live client connection, registered by the transport.
type Sender interface {
	Send(ctx context.Context, envelope Envelope) error
	Close(reason string) error
}

type Broadcaster struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]Sender
}

func New(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		logger: logger,
		conns:  make(map[string]Sender),
	}
}

func (that *Broadcaster) Register(connID string, sender Sender) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[connID] = sender
}

func (that *Broadcaster) Unregister(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, connID)
}

// SendTo - delivers one event to one connection. A missing connection is
// skipped: the client is gone and the next authoritative broadcast corrects
// whoever remains.
func (that *Broadcaster) SendTo(ctx context.Context, connID, action string, payload any) {
	that.mu.RLock()
	sender, ok := that.conns[connID]
	that.mu.RUnlock()

	if !ok {
		that.logger.Debug("connection not found", "connID", connID, "action", action)
		return
	}

	if err := sender.Send(ctx, Envelope{Action: action, Payload: payload}); err != nil {
		that.logger.Error("failed to send event", "connID", connID, "action", action, "error", err)
	}
}

// SendToMany - delivers one event to every connection in the recipient set.
func (that *Broadcaster) SendToMany(ctx context.Context, connIDs []string, action string, payload any) {
	for _, connID := range connIDs {
		that.SendTo(ctx, connID, action, payload)
	}
}

// SendToAll - delivers one event to every connected client.
func (that *Broadcaster) SendToAll(ctx context.Context, action string, payload any) {
	that.mu.RLock()
	connIDs := make([]string, 0, len(that.conns))
	for connID := range that.conns {
		connIDs = append(connIDs, connID)
	}
	that.mu.RUnlock()

	that.SendToMany(ctx, connIDs, action, payload)
}

// CloseConn - closes a connection with a reason, if it is still registered.
func (that *Broadcaster) CloseConn(connID, reason string) {
	that.mu.RLock()
	sender, ok := that.conns[connID]
	that.mu.RUnlock()

	if !ok {
		return
	}

	if err := sender.Close(reason); err != nil {
		that.logger.Debug("failed to close connection", "connID", connID, "error", err)
	}
}

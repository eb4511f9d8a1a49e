package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/pixelhall/pixelhall-backend/internal/broadcast"
	"github.com/pixelhall/pixelhall-backend/internal/entity"
	"github.com/pixelhall/pixelhall-backend/internal/event"
	"github.com/pixelhall/pixelhall-backend/internal/pkg"
)

type sessionManager interface {
	Create(connID string) *entity.Player
	Destroy(connID string)
}

type roomManager interface {
	ListRooms() []event.RoomSummary
	CreateRoom(ctx context.Context, connID, name string) (*entity.Room, error)
	Join(ctx context.Context, connID, roomID string)
	Leave(ctx context.Context, connID string)
	Ready(ctx context.Context, connID, name string, appearance *entity.Appearance, accountID string)
	Move(ctx context.Context, connID string, x, y float64)
	Chat(ctx context.Context, connID, message string)
	EditTile(ctx context.Context, connID, roomID string, row, col, code int) error
	PlaceFurniture(ctx context.Context, connID, roomID string, row, col int, itemID string) error
	RemoveFurniture(ctx context.Context, connID, roomID string, row, col int) error
	RollTrigger(ctx context.Context, connID string, row, col int)
}

type matchManager interface {
	Invite(ctx context.Context, inviterID, targetName string) error
	Accept(ctx context.Context, accepterID, inviterID string) error
	Move(ctx context.Context, connID, matchID string, column int) error
	Quit(ctx context.Context, connID, matchID string) error
	HandleDisconnect(ctx context.Context, connID string)
}

type Server struct {
	logger      *slog.Logger
	sessions    sessionManager
	rooms       roomManager
	matches     matchManager
	broadcaster *broadcast.Broadcaster

	handlers map[string]func(ctx context.Context, connID string, message *Message) error
}

func New(logger *slog.Logger, sessions sessionManager, rooms roomManager, matches matchManager, broadcaster *broadcast.Broadcaster) *Server {
	server := &Server{
		logger:      logger,
		sessions:    sessions,
		rooms:       rooms,
		matches:     matches,
		broadcaster: broadcaster,

		handlers: make(map[string]func(context.Context, string, *Message) error),
	}

	server.handlers["room:join"] = server.handleJoinRoom
	server.handlers["room:create"] = server.handleCreateRoom
	server.handlers["player:ready"] = server.handlePlayerReady
	server.handlers["player:move"] = server.handleMove
	server.handlers["chat:message"] = server.handleChat
	server.handlers["room:edit-tile"] = server.handleEditTile
	server.handlers["room:furniture-place"] = server.handlePlaceFurniture
	server.handlers["room:furniture-remove"] = server.handleRemoveFurniture
	server.handlers["game:invite"] = server.handleInvite
	server.handlers["game:accept"] = server.handleAcceptInvite
	server.handlers["game:move"] = server.handleMatchMove
	server.handlers["game:quit"] = server.handleMatchQuit
	server.handlers["trigger:roll"] = server.handleRollTrigger

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// handleConnection - accepts the socket, creates the session player, drops
// the client into the lobby and runs the read loop until the connection dies.
func (that *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleConnection")

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error("failed to accept websocket connection", "error", err)
		return
	}

	connID := pkg.GenerateSessionID()
	log = log.With("connID", connID)

	that.broadcaster.Register(connID, newConnSender(conn))
	that.sessions.Create(connID)

	defer func() {
		that.matches.HandleDisconnect(ctx, connID)
		that.rooms.Leave(ctx, connID)
		that.sessions.Destroy(connID)
		that.broadcaster.Unregister(connID)
		conn.Close(websocket.StatusNormalClosure, "session over")
	}()

	that.broadcaster.SendTo(ctx, connID, event.ActionRoomList, event.RoomListPayload{Rooms: that.rooms.ListRooms()})
	that.rooms.Join(ctx, connID, entity.LobbyRoomID)

	log.Info("WebSocket connection established")

	that.readLoop(ctx, connID, conn)
}

// readLoop - processes messages from the client. Handler errors are the
// silent-drop policy at work: they are logged and the loop moves on, nothing
// goes back to the offending client.
func (that *Server) readLoop(ctx context.Context, connID string, conn *websocket.Conn) {
	log := that.logger.With("method", "readLoop", "connID", connID)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Debug("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, connID, &message); err != nil {
			log.Debug("dropped message", "action", message.Action, "reason", err)
		}
	}
}

// ForceLogout - delivers the external auth collaborator's verdict and closes
// the connection. The core never decides this on its own.
func (that *Server) ForceLogout(ctx context.Context, connID, reason string) {
	that.broadcaster.SendTo(ctx, connID, event.ActionForceLogout, event.ForceLogoutPayload{Reason: reason})
	that.broadcaster.CloseConn(connID, reason)
}

// connSender adapts one coder/websocket connection to the broadcast sink.
type connSender struct {
	conn *websocket.Conn
}

func newConnSender(conn *websocket.Conn) *connSender {
	return &connSender{conn: conn}
}

func (that *connSender) Send(ctx context.Context, envelope broadcast.Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if err = that.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *connSender) Close(reason string) error {
	if err := that.conn.Close(websocket.StatusNormalClosure, reason); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}

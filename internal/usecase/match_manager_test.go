package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelhall/pixelhall-backend/internal/apperror"
	"github.com/pixelhall/pixelhall-backend/internal/entity"
	"github.com/pixelhall/pixelhall-backend/internal/event"
)

// startMatch puts Alice ("a") and Bob ("b") into the lobby and has Bob accept
// Alice's invite, so Alice opens round one.
func startMatch(ctx context.Context, t *testing.T, m *managersForTest) *entity.Match {
	t.Helper()

	m.enter(ctx, "a", "Alice", entity.LobbyRoomID)
	m.enter(ctx, "b", "Bob", entity.LobbyRoomID)

	require.NoError(t, m.matches.Invite(ctx, "a", "Bob"))
	require.NoError(t, m.matches.Accept(ctx, "b", "a"))

	match, ok := m.matches.ActiveMatch("a")
	require.True(t, ok)

	return match
}

// playRoundWin drives the current round to a vertical win for winnerID. The
// loser stacks a separate column and dodges its own fourth disc.
func playRoundWin(ctx context.Context, t *testing.T, matches *MatchManager, match *entity.Match, winnerID string) {
	t.Helper()

	loserID := match.Opponent(winnerID)

	if match.Turn == winnerID {
		for i := 0; i < 3; i++ {
			require.NoError(t, matches.Move(ctx, winnerID, match.ID, 0))
			require.NoError(t, matches.Move(ctx, loserID, match.ID, 1))
		}
		require.NoError(t, matches.Move(ctx, winnerID, match.ID, 0))

		return
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, matches.Move(ctx, loserID, match.ID, 1))
		require.NoError(t, matches.Move(ctx, winnerID, match.ID, 0))
	}
	require.NoError(t, matches.Move(ctx, loserID, match.ID, 2))
	require.NoError(t, matches.Move(ctx, winnerID, match.ID, 0))
}

func TestMatchManager_Invite(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers the invite to the target only", func(t *testing.T) {
		m := newManagersForTest(t)
		m.enter(ctx, "a", "Alice", entity.LobbyRoomID)
		m.enter(ctx, "b", "Bob", entity.LobbyRoomID)
		m.sink.reset()

		require.NoError(t, m.matches.Invite(ctx, "a", "Bob"))

		evt, ok := m.sink.lastFor("b", event.ActionGameInvite)
		require.True(t, ok)
		assert.Equal(t, event.InvitePayload{FromID: "a", FromName: "Alice"}, evt.Payload)

		assert.Empty(t, m.sink.eventsFor("a"))
	})

	t.Run("unknown target name reports back to the inviter", func(t *testing.T) {
		m := newManagersForTest(t)
		m.enter(ctx, "a", "Alice", entity.LobbyRoomID)
		m.sink.reset()

		err := m.matches.Invite(ctx, "a", "Nobody")
		assert.ErrorIs(t, err, apperror.ErrInviteTargetNotFound)

		evt, ok := m.sink.lastFor("a", event.ActionGameInviteError)
		require.True(t, ok)
		assert.Equal(t, event.InviteErrorPayload{Error: apperror.ErrInviteTargetNotFound.Error()}, evt.Payload)
	})

	t.Run("name lookup does not cross room boundaries", func(t *testing.T) {
		m := newManagersForTest(t)
		m.enter(ctx, "a", "Alice", entity.LobbyRoomID)

		m.sessions.Create("b")
		m.sessions.Ready("b", "Bob", nil, "bob")
		m.rooms.Join(ctx, "b", entity.LobbyRoomID)
		_, err := m.rooms.CreateRoom(ctx, "b", "Bob's den")
		require.NoError(t, err)
		m.sink.reset()

		err = m.matches.Invite(ctx, "a", "Bob")
		assert.ErrorIs(t, err, apperror.ErrInviteTargetNotFound)
		assert.Empty(t, m.sink.eventsFor("b"))
	})

	t.Run("self-invite is refused", func(t *testing.T) {
		m := newManagersForTest(t)
		m.enter(ctx, "a", "Alice", entity.LobbyRoomID)
		m.sink.reset()

		err := m.matches.Invite(ctx, "a", "Alice")
		assert.ErrorIs(t, err, apperror.ErrInviteSelf)

		evt, ok := m.sink.lastFor("a", event.ActionGameInviteError)
		require.True(t, ok)
		assert.Equal(t, event.InviteErrorPayload{Error: apperror.ErrInviteSelf.Error()}, evt.Payload)
	})
}

func TestMatchManager_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("starts the match with the inviter to move", func(t *testing.T) {
		m := newManagersForTest(t)
		m.enter(ctx, "a", "Alice", entity.LobbyRoomID)
		m.enter(ctx, "b", "Bob", entity.LobbyRoomID)
		m.sink.reset()

		require.NoError(t, m.matches.Accept(ctx, "b", "a"))

		for _, connID := range []string{"a", "b"} {
			evt, ok := m.sink.lastFor(connID, event.ActionGameStart)
			require.True(t, ok, "no snapshot for %s", connID)

			snapshot, ok := evt.Payload.(event.MatchSnapshotPayload)
			require.True(t, ok)
			assert.Equal(t, [2]string{"a", "b"}, snapshot.Players)
			assert.Equal(t, "a", snapshot.Turn)
			assert.Equal(t, 1, snapshot.Round)
			assert.Equal(t, entity.DefaultBestOf, snapshot.BestOf)
			assert.Equal(t, entity.Board{}, snapshot.Board)
		}
	})

	t.Run("parties in different rooms cannot start", func(t *testing.T) {
		m := newManagersForTest(t)
		m.enter(ctx, "a", "Alice", entity.LobbyRoomID)

		m.sessions.Create("b")
		m.sessions.Ready("b", "Bob", nil, "bob")
		m.rooms.Join(ctx, "b", entity.LobbyRoomID)
		_, err := m.rooms.CreateRoom(ctx, "b", "Bob's den")
		require.NoError(t, err)
		m.sink.reset()

		err = m.matches.Accept(ctx, "b", "a")
		assert.ErrorIs(t, err, apperror.ErrNotInSameRoom)
		assert.Empty(t, m.sink.all())
	})

	t.Run("a player holds at most one active match", func(t *testing.T) {
		m := newManagersForTest(t)
		startMatch(ctx, t, m)
		m.enter(ctx, "c", "Carol", entity.LobbyRoomID)
		m.sink.reset()

		err := m.matches.Accept(ctx, "c", "a")
		assert.ErrorIs(t, err, apperror.ErrAlreadyInMatch)
		assert.Empty(t, m.sink.all())
	})
}

func TestMatchManager_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("a legal drop updates both participants", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)
		m.sink.reset()

		require.NoError(t, m.matches.Move(ctx, "a", match.ID, 3))

		for _, connID := range []string{"a", "b"} {
			evt, ok := m.sink.lastFor(connID, event.ActionGameUpdate)
			require.True(t, ok, "no update for %s", connID)

			update, ok := evt.Payload.(event.MatchUpdatePayload)
			require.True(t, ok)
			assert.Equal(t, event.LastMove{Row: entity.BoardRows - 1, Col: 3}, update.LastMove)
			assert.Equal(t, 1, update.Board[entity.BoardRows-1][3])
			assert.Equal(t, "b", update.Turn)
		}
	})

	t.Run("rejected moves change nothing and stay silent", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)
		m.sink.reset()

		assert.ErrorIs(t, m.matches.Move(ctx, "b", match.ID, 3), apperror.ErrNotYourTurn)
		assert.ErrorIs(t, m.matches.Move(ctx, "a", match.ID, -1), apperror.ErrInvalidColumn)
		assert.ErrorIs(t, m.matches.Move(ctx, "a", match.ID, entity.BoardCols), apperror.ErrInvalidColumn)
		assert.ErrorIs(t, m.matches.Move(ctx, "a", "no-such-match", 3), apperror.ErrMatchNotFound)

		assert.Equal(t, entity.Board{}, match.Board)
		assert.Empty(t, m.sink.eventsFor("a"))
		assert.Empty(t, m.sink.eventsFor("b"))

		m.enter(ctx, "c", "Carol", entity.LobbyRoomID)
		assert.ErrorIs(t, m.matches.Move(ctx, "c", match.ID, 3), apperror.ErrNotParticipant)
	})

	t.Run("a stacked column refuses further drops", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)

		for i := 0; i < entity.BoardRows/2; i++ {
			require.NoError(t, m.matches.Move(ctx, "a", match.ID, 3))
			require.NoError(t, m.matches.Move(ctx, "b", match.ID, 3))
		}

		assert.ErrorIs(t, m.matches.Move(ctx, "a", match.ID, 3), apperror.ErrColumnFull)
	})

	t.Run("the board update precedes the round result", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)

		for i := 0; i < 3; i++ {
			require.NoError(t, m.matches.Move(ctx, "a", match.ID, 0))
			require.NoError(t, m.matches.Move(ctx, "b", match.ID, 1))
		}
		m.sink.reset()

		require.NoError(t, m.matches.Move(ctx, "a", match.ID, 0))

		assert.Equal(t,
			[]string{event.ActionGameUpdate, event.ActionGameRound, event.ActionGameStart},
			m.sink.actionsFor("a"),
		)
	})
}

func TestMatchManager_Rounds(t *testing.T) {
	ctx := context.Background()

	t.Run("round wins are booked and the opener alternates", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)
		m.sink.reset()

		playRoundWin(ctx, t, m.matches, match, "a")

		evt, ok := m.sink.lastFor("b", event.ActionGameRound)
		require.True(t, ok)
		assert.Equal(t, event.RoundEndPayload{
			MatchID:  match.ID,
			Round:    1,
			WinnerID: "a",
			Wins:     [2]int{1, 0},
		}, evt.Payload)

		// round two: fresh board, second player opens
		evt, ok = m.sink.lastFor("b", event.ActionGameStart)
		require.True(t, ok)
		snapshot, ok := evt.Payload.(event.MatchSnapshotPayload)
		require.True(t, ok)
		assert.Equal(t, 2, snapshot.Round)
		assert.Equal(t, "b", snapshot.Turn)
		assert.Equal(t, entity.Board{}, snapshot.Board)
	})

	t.Run("sweeping the first two rounds ends a best-of-three", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)

		playRoundWin(ctx, t, m.matches, match, "a")
		m.sink.reset()
		playRoundWin(ctx, t, m.matches, match, "a")

		for _, connID := range []string{"a", "b"} {
			evt, ok := m.sink.lastFor(connID, event.ActionGameEnd)
			require.True(t, ok, "no result for %s", connID)
			assert.Equal(t, event.MatchEndPayload{
				MatchID:  match.ID,
				WinnerID: "a",
				Reason:   event.EndReasonScore,
				Wins:     [2]int{2, 0},
			}, evt.Payload)
		}

		// no third round was opened
		_, ok := m.sink.lastFor("a", event.ActionGameStart)
		assert.False(t, ok)

		_, active := m.matches.ActiveMatch("a")
		assert.False(t, active)
	})

	t.Run("a split decided in the third round", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)

		playRoundWin(ctx, t, m.matches, match, "a")
		playRoundWin(ctx, t, m.matches, match, "b")
		m.sink.reset()
		playRoundWin(ctx, t, m.matches, match, "b")

		evt, ok := m.sink.lastFor("a", event.ActionGameEnd)
		require.True(t, ok)
		assert.Equal(t, event.MatchEndPayload{
			MatchID:  match.ID,
			WinnerID: "b",
			Reason:   event.EndReasonScore,
			Wins:     [2]int{1, 2},
		}, evt.Payload)
	})

	t.Run("drawn rounds can draw the whole match", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)

		// round three with the score tied, one disc short of a full dead board
		match.Wins = [2]int{1, 1}
		match.StartRound(3)
		match.Board = deadBoard()
		match.Board[0][6] = entity.CellEmpty
		m.sink.reset()

		require.NoError(t, m.matches.Move(ctx, "a", match.ID, 6))

		for _, connID := range []string{"a", "b"} {
			evt, ok := m.sink.lastFor(connID, event.ActionGameEnd)
			require.True(t, ok, "no result for %s", connID)
			assert.Equal(t, event.MatchEndPayload{
				MatchID: match.ID,
				Reason:  event.EndReasonDraw,
				Wins:    [2]int{1, 1},
			}, evt.Payload)
		}

		_, active := m.matches.ActiveMatch("a")
		assert.False(t, active)
	})
}

func TestMatchManager_Abandonment(t *testing.T) {
	ctx := context.Background()

	t.Run("quitting hands the match to the opponent", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)
		m.sink.reset()

		require.NoError(t, m.matches.Quit(ctx, "a", match.ID))

		evt, ok := m.sink.lastFor("b", event.ActionGameEnd)
		require.True(t, ok)
		assert.Equal(t, event.MatchEndPayload{
			MatchID:  match.ID,
			WinnerID: "b",
			Reason:   event.EndReasonOpponentLeft,
			Wins:     [2]int{0, 0},
		}, evt.Payload)

		assert.Empty(t, m.sink.eventsFor("a"))
	})

	t.Run("a disconnect resolves like a quit, silently for the leaver", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)
		m.sink.reset()

		m.matches.HandleDisconnect(ctx, "b")

		evt, ok := m.sink.lastFor("a", event.ActionGameEnd)
		require.True(t, ok)
		payload, ok := evt.Payload.(event.MatchEndPayload)
		require.True(t, ok)
		assert.Equal(t, "a", payload.WinnerID)
		assert.Equal(t, event.EndReasonOpponentLeft, payload.Reason)
		assert.Equal(t, match.ID, payload.MatchID)

		assert.Empty(t, m.sink.eventsFor("b"))

		_, active := m.matches.ActiveMatch("a")
		assert.False(t, active)
	})

	t.Run("disconnects without a match are ignored", func(t *testing.T) {
		m := newManagersForTest(t)
		m.enter(ctx, "a", "Alice", entity.LobbyRoomID)
		m.sink.reset()

		m.matches.HandleDisconnect(ctx, "a")

		assert.Empty(t, m.sink.all())
	})

	t.Run("outsiders cannot quit someone else's match", func(t *testing.T) {
		m := newManagersForTest(t)
		match := startMatch(ctx, t, m)
		m.enter(ctx, "c", "Carol", entity.LobbyRoomID)

		assert.ErrorIs(t, m.matches.Quit(ctx, "c", match.ID), apperror.ErrNotParticipant)
		assert.ErrorIs(t, m.matches.Quit(ctx, "a", "no-such-match"), apperror.ErrMatchNotFound)
	})
}

// deadBoard fills the grid with a pattern that contains no four-in-a-row:
// columns alternate marks and the pairing flips every two rows, capping every
// run at two outside the alternating horizontals.
func deadBoard() entity.Board {
	var board entity.Board

	for row := 0; row < entity.BoardRows; row++ {
		for col := 0; col < entity.BoardCols; col++ {
			mark := 1 + col%2
			if (row/2)%2 == 1 {
				mark = 3 - mark
			}
			board[row][col] = mark
		}
	}

	return board
}

package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pixelhall/pixelhall-backend/internal/apperror"
	"github.com/pixelhall/pixelhall-backend/internal/connectfour"
	"github.com/pixelhall/pixelhall-backend/internal/entity"
	"github.com/pixelhall/pixelhall-backend/internal/event"
	"github.com/pixelhall/pixelhall-backend/internal/pkg"
)

type colocation interface {
	RoomOf(connID string) (string, bool)
	MemberByName(roomID, name string) (string, bool)
}

type matchSessions interface {
	Get(connID string) (*entity.Player, bool)
}

// MatchManager owns the active match set. Matches live from invite acceptance
// until the final result event; finished matches are deleted, never retained.
type MatchManager struct {
	logger   *slog.Logger
	rooms    colocation
	sessions matchSessions
	sink     eventSink

	mu      sync.Mutex
	matches map[string]*entity.Match
}

func NewMatchManager(logger *slog.Logger, rooms colocation, sessions matchSessions, sink eventSink) *MatchManager {
	return &MatchManager{
		logger:   logger,
		rooms:    rooms,
		sessions: sessions,
		sink:     sink,

		matches: make(map[string]*entity.Match),
	}
}

// Invite - resolves a target by display name within the initiator's room and
// delivers the invite to the target only. This is the one surface with
// explicit error events back to the requester.
func (that *MatchManager) Invite(ctx context.Context, inviterID, targetName string) error {
	inviter, ok := that.sessions.Get(inviterID)
	if !ok {
		return apperror.ErrPlayerNotFound
	}

	roomID, ok := that.rooms.RoomOf(inviterID)
	if !ok {
		that.sendInviteError(ctx, inviterID, apperror.ErrInviteTargetNotFound.Error())
		return apperror.ErrInviteTargetNotFound
	}

	targetID, ok := that.rooms.MemberByName(roomID, targetName)
	if !ok {
		that.sendInviteError(ctx, inviterID, apperror.ErrInviteTargetNotFound.Error())
		return apperror.ErrInviteTargetNotFound
	}

	if targetID == inviterID {
		that.sendInviteError(ctx, inviterID, apperror.ErrInviteSelf.Error())
		return apperror.ErrInviteSelf
	}

	that.sink.SendTo(ctx, targetID, event.ActionGameInvite, event.InvitePayload{
		FromID:   inviterID,
		FromName: inviter.Name,
	})

	return nil
}

// Accept - allocates the match. No state exists for a pending invite, so the
// checks run against the world as it is at acceptance time: both parties
// co-located, neither already playing. Failures are silent.
func (that *MatchManager) Accept(ctx context.Context, accepterID, inviterID string) error {
	inviterRoom, ok := that.rooms.RoomOf(inviterID)
	if !ok {
		return apperror.ErrNotInSameRoom
	}

	accepterRoom, ok := that.rooms.RoomOf(accepterID)
	if !ok || accepterRoom != inviterRoom {
		return apperror.ErrNotInSameRoom
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.hasActiveMatchLocked(inviterID) || that.hasActiveMatchLocked(accepterID) {
		return apperror.ErrAlreadyInMatch
	}

	match := entity.NewMatch(pkg.GenerateMatchID(), inviterID, accepterID)
	that.matches[match.ID] = match

	that.sendSnapshotLocked(ctx, match)

	that.logger.Info("match started", "matchID", match.ID, "players", match.Players)

	return nil
}

// Move - applies one drop for the turn holder. The move update goes out to
// both participants before any round or match resolution so clients can
// animate the placement first.
func (that *MatchManager) Move(ctx context.Context, connID, matchID string, column int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	match, ok := that.matches[matchID]
	if !ok {
		return apperror.ErrMatchNotFound
	}

	row, err := connectfour.MakeMove(match, connID, column)
	if err != nil {
		return err
	}

	winner := connectfour.CheckWinner(match.Board)
	full := connectfour.IsFull(match.Board)

	update := event.MatchUpdatePayload{
		MatchID:  match.ID,
		Board:    match.Board,
		Turn:     match.Turn,
		LastMove: event.LastMove{Row: row, Col: column},
		Wins:     match.Wins,
	}
	that.sendToBothLocked(ctx, match, event.ActionGameUpdate, update)

	if winner == 0 && !full {
		return nil
	}

	that.resolveRoundLocked(ctx, match, winner)

	return nil
}

// Quit - explicit abandonment: the remaining participant wins.
func (that *MatchManager) Quit(ctx context.Context, connID, matchID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	match, ok := that.matches[matchID]
	if !ok {
		return apperror.ErrMatchNotFound
	}

	if !match.IsParticipant(connID) {
		return apperror.ErrNotParticipant
	}

	if !match.IsInProgress() {
		return apperror.ErrMatchFinished
	}

	that.abandonLocked(ctx, match, connID)

	return nil
}

// HandleDisconnect - resolves abandonment for a dropped connection. The
// departed side gets nothing; it is gone.
func (that *MatchManager) HandleDisconnect(ctx context.Context, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, match := range that.matches {
		if match.IsInProgress() && match.IsParticipant(connID) {
			that.abandonLocked(ctx, match, connID)
			return
		}
	}
}

// ActiveMatch - returns the in-progress match of a player, if any. A player
// has at most one.
func (that *MatchManager) ActiveMatch(connID string) (*entity.Match, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, match := range that.matches {
		if match.IsInProgress() && match.IsParticipant(connID) {
			return match, true
		}
	}

	return nil, false
}

func (that *MatchManager) hasActiveMatchLocked(connID string) bool {
	for _, match := range that.matches {
		if match.IsInProgress() && match.IsParticipant(connID) {
			return true
		}
	}

	return false
}

// resolveRoundLocked - books the round result, then either rolls into the
// next round or ends the match. The stop condition is literal: enough round
// wins, or the round count reaching best-of. A tie at the cap is a drawn
// match; it is reachable when rounds themselves end drawn.
func (that *MatchManager) resolveRoundLocked(ctx context.Context, match *entity.Match, winnerMark int) {
	var roundWinnerID string

	if winnerMark != 0 {
		match.Wins[winnerMark-1]++
		roundWinnerID = match.Players[winnerMark-1]
	}

	required := match.RequiredWins()
	done := match.Wins[0] >= required || match.Wins[1] >= required || match.Round == match.BestOf

	if !done {
		that.sendToBothLocked(ctx, match, event.ActionGameRound, event.RoundEndPayload{
			MatchID:  match.ID,
			Round:    match.Round,
			WinnerID: roundWinnerID,
			Wins:     match.Wins,
		})

		match.StartRound(match.Round + 1)
		that.sendSnapshotLocked(ctx, match)

		return
	}

	match.Status = entity.MatchStatusFinished

	result := event.MatchEndPayload{
		MatchID: match.ID,
		Reason:  event.EndReasonScore,
		Wins:    match.Wins,
	}

	switch {
	case match.Wins[0] > match.Wins[1]:
		result.WinnerID = match.Players[0]
	case match.Wins[1] > match.Wins[0]:
		result.WinnerID = match.Players[1]
	default:
		result.Reason = event.EndReasonDraw
	}

	that.sendToBothLocked(ctx, match, event.ActionGameEnd, result)

	delete(that.matches, match.ID)

	that.logger.Info("match finished", "matchID", match.ID, "winner", result.WinnerID, "reason", result.Reason)
}

func (that *MatchManager) abandonLocked(ctx context.Context, match *entity.Match, leaverID string) {
	match.Status = entity.MatchStatusFinished

	remaining := match.Opponent(leaverID)

	that.sink.SendTo(ctx, remaining, event.ActionGameEnd, event.MatchEndPayload{
		MatchID:  match.ID,
		WinnerID: remaining,
		Reason:   event.EndReasonOpponentLeft,
		Wins:     match.Wins,
	})

	delete(that.matches, match.ID)

	that.logger.Info("match abandoned", "matchID", match.ID, "leaver", leaverID)
}

func (that *MatchManager) sendSnapshotLocked(ctx context.Context, match *entity.Match) {
	snapshot := event.MatchSnapshotPayload{
		MatchID: match.ID,
		Players: match.Players,
		Board:   match.Board,
		Turn:    match.Turn,
		Round:   match.Round,
		BestOf:  match.BestOf,
		Wins:    match.Wins,
	}

	that.sendToBothLocked(ctx, match, event.ActionGameStart, snapshot)
}

func (that *MatchManager) sendToBothLocked(ctx context.Context, match *entity.Match, action string, payload any) {
	that.sink.SendTo(ctx, match.Players[0], action, payload)
	that.sink.SendTo(ctx, match.Players[1], action, payload)
}

func (that *MatchManager) sendInviteError(ctx context.Context, connID, message string) {
	that.sink.SendTo(ctx, connID, event.ActionGameInviteError, event.InviteErrorPayload{Error: message})
}

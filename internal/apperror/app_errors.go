package apperror

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrNotInRoom      = errors.New("player is not a member of the room")

	ErrNotRoomOwner       = errors.New("room is owned by another account")
	ErrBorderCell         = errors.New("border cells cannot be edited")
	ErrUnknownTileCode    = errors.New("unknown tile code")
	ErrMissingEntitlement = errors.New("room owner does not hold the required item")
	ErrItemNotOwned       = errors.New("item is not in the account inventory")

	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchFinished  = errors.New("match is already finished")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrInvalidColumn  = errors.New("invalid column index")
	ErrColumnFull     = errors.New("column is already full")
	ErrNotParticipant = errors.New("player is not part of the match")

	ErrInviteTargetNotFound = errors.New("no player with that name is here")
	ErrInviteSelf           = errors.New("you can't invite yourself")
	ErrAlreadyInMatch       = errors.New("a match is already in progress")
	ErrNotInSameRoom        = errors.New("players are not in the same room")
)

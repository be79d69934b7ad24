package app

// ErrorKind classifies why a command was rejected. Every kind except
// KindInternal is a recoverable per-command failure: canonical room
// state is left untouched and only the offending session is notified.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindPhase            ErrorKind = "phase"
	KindTurn             ErrorKind = "turn"
	KindCapacity         ErrorKind = "capacity"
	KindIdentityConflict ErrorKind = "identity_conflict"
	KindInternal         ErrorKind = "internal"
)

// CommandError is a rejected command with its taxonomy kind.
type CommandError struct {
	Kind    ErrorKind
	Message string
}

func (e *CommandError) Error() string { return e.Message }

func validationErr(msg string) *CommandError {
	return &CommandError{Kind: KindValidation, Message: msg}
}

func phaseErr(msg string) *CommandError {
	return &CommandError{Kind: KindPhase, Message: msg}
}

var (
	ErrBadRoomCode   = validationErr("room code must be exactly 6 letters")
	ErrMissingName   = validationErr("player name is required")
	ErrRoomNotFound  = validationErr("room not found")
	ErrUnknownPlayer = validationErr("player not found in room")
	ErrBadWireSlot   = validationErr("selected wire position is not valid")
	ErrWireRevealed  = validationErr("that wire has already been revealed")
	ErrClaimRange    = validationErr("claim is out of range")

	ErrRoomFull    = &CommandError{Kind: KindCapacity, Message: "room is full (max 8 players)"}
	ErrPlayerCount = &CommandError{Kind: KindCapacity, Message: "need 4-8 players to start"}

	ErrGameInProgress  = phaseErr("game has already started")
	ErrNotInLobby      = phaseErr("not in lobby phase")
	ErrNotInSetup      = phaseErr("not in setup phase")
	ErrNotPlaying      = phaseErr("not in playing phase")
	ErrNotFinished     = phaseErr("game has not finished")
	ErrRoundNotEnded   = phaseErr("round has not ended")
	ErrNotAllReady     = phaseErr("all players must be ready")
	ErrSetupIncomplete = phaseErr("all players must submit claims and mark ready")
	ErrClaimSubmitted  = phaseErr("claim already submitted")
	ErrClaimRequired   = phaseErr("submit your claim first")
	ErrNotHost         = phaseErr("only the host can do that")

	ErrNotYourTurn = &CommandError{Kind: KindTurn, Message: "not your turn"}
	ErrSelfTarget  = &CommandError{Kind: KindTurn, Message: "cannot select your own wire"}

	ErrDuplicateName    = &CommandError{Kind: KindIdentityConflict, Message: "that name is already taken"}
	ErrNameMismatch     = &CommandError{Kind: KindIdentityConflict, Message: "player name does not match"}
	ErrAlreadyConnected = &CommandError{Kind: KindIdentityConflict, Message: "a player with this name is already connected"}
	ErrCannotRejoin     = &CommandError{Kind: KindIdentityConflict, Message: "cannot join a game in progress"}
)

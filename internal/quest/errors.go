package quest

import "errors"

// Domain errors returned by the progress tracker and quiz engine. Callers
// branch with errors.Is; ErrorKind supplies the stable identifier used in
// error events and HTTP bodies.
var (
	ErrInvalidRoom          = errors.New("room does not exist")
	ErrRoomLocked           = errors.New("room is locked")
	ErrUnknownQuestion      = errors.New("question does not exist")
	ErrAlreadyAnswered      = errors.New("question already answered")
	ErrNoActiveQuestion     = errors.New("no question is active")
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrUnknownCategory      = errors.New("category does not exist")
)

// ErrorKind maps a domain error to its wire identifier. Unknown errors map
// to "internal".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRoom):
		return "invalid_room"
	case errors.Is(err, ErrRoomLocked):
		return "room_locked"
	case errors.Is(err, ErrUnknownQuestion):
		return "unknown_question"
	case errors.Is(err, ErrAlreadyAnswered):
		return "already_answered"
	case errors.Is(err, ErrNoActiveQuestion):
		return "no_active_question"
	case errors.Is(err, ErrNoQuestionsAvailable):
		return "no_questions_available"
	case errors.Is(err, ErrUnknownCategory):
		return "unknown_category"
	default:
		return "internal"
	}
}

// IsUser reports whether err is one of the expected rule violations a
// client can trigger, as opposed to an internal failure.
func IsUser(err error) bool {
	return ErrorKind(err) != "internal"
}

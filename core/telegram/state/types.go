package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Resource is a releasable handle owned by a session, typically a temporary
// file holding the user's current working image. Release must be idempotent.
type Resource interface {
	Release() error
}

// Session stores the conversation state and the currently owned resource for
// a user. The single State field makes "at most one pending input mode" a
// structural property instead of a convention over boolean flags.
type Session struct {
	State    State
	resource Resource
}

// Manager orchestrates user sessions, FSM state transitions, and ownership
// of per-user resources. A session owns at most one live resource; replacing
// it releases the previous one exactly once.
type Manager interface {
	GetState(userID int64) State
	SetState(userID int64, st State)
	ClearState(userID int64)
	HasState(userID int64) bool

	// SetResource stores a new resource for the user, releasing the previous
	// one if present. A nil resource only releases the current one.
	SetResource(userID int64, res Resource)
	Resource(userID int64) (Resource, bool)

	// Reset returns the session to idle and releases any held resource.
	Reset(userID int64)
	// Clear removes the session entirely, releasing any held resource.
	Clear(userID int64)

	// Count reports the number of live sessions.
	Count() int

	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

package state

import (
	"sync"

	"github.com/Sambhram1/tele-bot/core/logger"
	tghelpers "github.com/Sambhram1/tele-bot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMemoryManager constructs an in-memory Manager implementation.
// Sessions are process-local; they are created lazily on first mutation and
// live until Clear or process teardown.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
	}
}

// session returns the stored session for a user, creating it if necessary.
// Callers must hold mu.
func (m *memoryManager) session(userID int64) *Session {
	sess, ok := m.sessions[userID]
	if !ok {
		sess = &Session{State: StateIdle}
		m.sessions[userID] = sess
	}
	return sess
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// SetState sets the FSM state for the given user.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).State = st
}

// ClearState resets the FSM state to idle without touching the held resource.
func (m *memoryManager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[userID]; ok {
		sess.State = StateIdle
	}
}

// HasState checks if a user has an active state other than idle.
func (m *memoryManager) HasState(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	return ok && sess.State != StateIdle
}

// SetResource stores a new resource for the user and releases the previous
// one. The swap happens under the store lock so two concurrent updates for
// the same user cannot leave the session holding two live resources.
func (m *memoryManager) SetResource(userID int64, res Resource) {
	m.mu.Lock()
	sess := m.session(userID)
	prev := sess.resource
	sess.resource = res
	m.mu.Unlock()

	releaseResource(userID, prev)
}

// Resource returns the resource currently owned by the user's session.
func (m *memoryManager) Resource(userID int64) (Resource, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok || sess.resource == nil {
		return nil, false
	}
	return sess.resource, true
}

// Reset returns the session to idle and releases any held resource.
func (m *memoryManager) Reset(userID int64) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	var prev Resource
	if ok {
		prev = sess.resource
		sess.resource = nil
		sess.State = StateIdle
	}
	m.mu.Unlock()

	releaseResource(userID, prev)
}

// Clear removes the entire session for a user, releasing any held resource.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	var prev Resource
	if ok {
		prev = sess.resource
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	releaseResource(userID, prev)
}

// Count reports the number of live sessions.
func (m *memoryManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.HasState(userID)
}

// ManagerHandler executes the handler function registered for the user's current state, if any.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	if handler, ok := fsmHandlers[current]; ok {
		return handler(c)
	}
	return nil
}

func releaseResource(userID int64, res Resource) {
	if res == nil {
		return
	}
	if err := res.Release(); err != nil {
		logger.Warn(logger.Background(), "tg", "session.release_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

package state

import (
	"sync"
	"time"

	playerv1 "github.com/osa030/podbox/internal/api/playerv1"
)

// Manager manages session state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Session identity
	sessionID string
	title     string

	// Session lifecycle
	phase     Phase
	startedAt *time.Time

	// Schedule
	endTime *time.Time
}

// New creates a new state manager.
func New(sessionID, title string) *Manager {
	return &Manager{
		sessionID: sessionID,
		title:     title,
		phase:     PhaseIdle,
	}
}

// GetPhase returns the current session phase.
func (m *Manager) GetPhase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// IsActive returns true while the session is active.
func (m *Manager) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase == PhaseActive
}

// Activate moves an idle session to active and records the start time.
// Returns false if the session was not idle.
func (m *Manager) Activate(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseIdle {
		return false
	}
	m.phase = PhaseActive
	m.startedAt = &now
	return true
}

// Terminate moves the session to terminated.
// Returns false if it was already terminated.
func (m *Manager) Terminate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseTerminated {
		return false
	}
	m.phase = PhaseTerminated
	return true
}

// GetSessionID returns the session ID.
func (m *Manager) GetSessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// GetTitle returns the session title.
func (m *Manager) GetTitle() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.title
}

// SetEndTime sets the scheduled end time. nil clears it.
func (m *Manager) SetEndTime(end *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endTime = end
}

// GetTimes returns the start and scheduled end times.
func (m *Manager) GetTimes() (*time.Time, *time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.startedAt, m.endTime
}

// BuildSessionInfo creates a complete SessionInfo with all fields.
func (m *Manager) BuildSessionInfo() *playerv1.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buildSessionInfoLocked()
}

// buildSessionInfoLocked creates SessionInfo without acquiring lock.
// Must be called with m.mu held (either RLock or Lock).
func (m *Manager) buildSessionInfoLocked() *playerv1.SessionInfo {
	var startedAtStr string
	if m.startedAt != nil {
		startedAtStr = m.startedAt.Format(time.RFC3339)
	}

	var endTimeStr string
	if m.endTime != nil {
		endTimeStr = m.endTime.Format(time.RFC3339)
	}

	return &playerv1.SessionInfo{
		SessionId:        m.sessionID,
		Title:            m.title,
		Phase:            m.phase.Proto(),
		StartedAt:        startedAtStr,
		ScheduledEndTime: endTimeStr,
	}
}

package exporter

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/developer-vif/openshift-workload-simulator/internal/errors"
)

// State is the lifecycle state of snapshot export.
type State string

// Exporter states.
const (
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateBackoff  State = "backoff"
	StateStopped  State = "stopped"
)

// AllStates lists every state, for gauge resets.
var AllStates = []State{StateStarting, StateRunning, StateBackoff, StateStopped}

const (
	defaultQuotaBackoff     = 5 * time.Minute
	defaultRateLimitBackoff = 30 * time.Second
)

// StateMachine tracks the exporter's state and handles transitions driven
// by HTTP status codes from the backend.
type StateMachine struct {
	mu           sync.RWMutex
	state        State
	stateReason  string
	backoffUntil time.Time
	clock        errors.Clock
}

// NewStateMachine creates a StateMachine in StateStarting.
func NewStateMachine(clock errors.Clock) *StateMachine {
	return &StateMachine{
		state: StateStarting,
		clock: clock,
	}
}

// State returns the current state.
func (sm *StateMachine) State() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.state
}

// StateReason returns the human-readable reason for the current state.
func (sm *StateMachine) StateReason() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.stateReason
}

// TransitionTo sets the state with a reason.
func (sm *StateMachine) TransitionTo(state State, reason string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.state = state
	sm.stateReason = reason
}

// HandleHTTPStatus transitions state based on the backend reply. retryAfter
// of zero selects the default backoff for 402 and 429.
func (sm *StateMachine) HandleHTTPStatus(statusCode int, retryAfter time.Duration) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	switch {
	case statusCode == http.StatusOK:
		sm.state = StateRunning
		sm.stateReason = ""
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		sm.state = StateStopped
		sm.stateReason = "authentication failed"
	case statusCode == http.StatusPaymentRequired:
		sm.enterBackoffLocked("quota exceeded", retryAfter, defaultQuotaBackoff)
	case statusCode == http.StatusGone:
		sm.state = StateStopped
		sm.stateReason = "exporter deprecated"
	case statusCode == http.StatusTooManyRequests:
		sm.enterBackoffLocked("rate limited", retryAfter, defaultRateLimitBackoff)
	case statusCode >= 500:
		// Transport already retried; only the reason changes.
		sm.stateReason = fmt.Sprintf("server error: %d", statusCode)
	}
}

func (sm *StateMachine) enterBackoffLocked(reason string, retryAfter, fallback time.Duration) {
	if retryAfter <= 0 {
		retryAfter = fallback
	}
	sm.state = StateBackoff
	sm.stateReason = reason
	sm.backoffUntil = sm.clock.Now().Add(retryAfter)
}

// IsBackoffExpired returns true if the backoff period has elapsed.
func (sm *StateMachine) IsBackoffExpired() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.clock.Now().After(sm.backoffUntil)
}

// BackoffRemaining returns the duration until backoff expires, or 0 if expired.
func (sm *StateMachine) BackoffRemaining() time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	remaining := sm.backoffUntil.Sub(sm.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

package console

import (
	"sync"
	"time"

	"github.com/small-frappuccino/mirrorcore/pkg/log"
)

// Outcome is how an edit session resolved.
type Outcome int

const (
	OutcomeMessage Outcome = iota
	OutcomeTimeout
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMessage:
		return "message"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "cancelled"
	}
}

// Result is the resolution of one edit session. Message is populated only
// when Outcome is OutcomeMessage.
type Result struct {
	Outcome Outcome
	Message Incoming
}

type sessionKey struct {
	chatID string
	userID string
}

// Session is one armed wait for a single matching reply. It resolves exactly
// once: with the first matching message, at the deadline, or on cancel,
// whichever happens first.
type Session struct {
	key      sessionKey
	kinds    Kinds
	timer    *time.Timer
	done     chan Result
	owner    *Correlator
	resolved bool
}

// Wait blocks until the session resolves.
func (s *Session) Wait() Result { return <-s.done }

// Cancel resolves the session as cancelled. Safe to call after resolution.
func (s *Session) Cancel() { s.owner.resolve(s, Result{Outcome: OutcomeCancelled}) }

// Correlator routes inbound messages to armed edit sessions. Sessions are
// keyed per chat/user pair; arming while a session is live cancels the old
// one and the new session wins.
type Correlator struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

func NewCorrelator() *Correlator {
	return &Correlator{sessions: make(map[sessionKey]*Session)}
}

// Arm registers a session that accepts the given kinds and resolves as a
// timeout after the given duration. Message traffic does not extend the
// deadline.
func (c *Correlator) Arm(chatID, userID string, kinds Kinds, timeout time.Duration) *Session {
	key := sessionKey{chatID, userID}

	c.mu.Lock()
	if prev, ok := c.sessions[key]; ok {
		log.Application().Warn("Replacing live edit session", "chat", chatID, "user", userID)
		c.resolveLocked(prev, Result{Outcome: OutcomeCancelled})
	}
	s := &Session{
		key:   key,
		kinds: kinds,
		done:  make(chan Result, 1),
		owner: c,
	}
	c.sessions[key] = s
	s.timer = time.AfterFunc(timeout, func() {
		c.resolve(s, Result{Outcome: OutcomeTimeout})
	})
	c.mu.Unlock()

	return s
}

// Deliver offers an inbound message to the armed session for its chat/user
// pair. It returns true when the message was consumed. A message of the
// wrong kind is left to normal handling and the session keeps waiting.
func (c *Correlator) Deliver(in Incoming) bool {
	key := sessionKey{in.ChatID, in.UserID}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[key]
	if !ok || !s.kinds.Has(in.Kind) {
		return false
	}
	c.resolveLocked(s, Result{Outcome: OutcomeMessage, Message: in})
	return true
}

// Cancel resolves the live session for a chat/user pair, if any.
func (c *Correlator) Cancel(chatID, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[sessionKey{chatID, userID}]
	if !ok {
		return false
	}
	c.resolveLocked(s, Result{Outcome: OutcomeCancelled})
	return true
}

// Armed reports whether a session is live for the pair.
func (c *Correlator) Armed(chatID, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[sessionKey{chatID, userID}]
	return ok
}

func (c *Correlator) resolve(s *Session, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolveLocked(s, r)
}

// resolveLocked settles a session exactly once and deregisters it, but only
// if it is still the registered session for its key. The done channel is
// buffered so resolution never blocks on the waiter.
func (c *Correlator) resolveLocked(s *Session, r Result) {
	if s.resolved {
		return
	}
	s.resolved = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if cur, ok := c.sessions[s.key]; ok && cur == s {
		delete(c.sessions, s.key)
	}
	s.done <- r
}

package console

import "sync"

// RootCategory is the pseudo-category of the top-level menu.
const RootCategory = "main"

// Mode selects how non-boolean keys render: edit buttons or read-only views.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "view"
}

// NavState is where one user's console currently points.
type NavState struct {
	Category string
	Page     int
	Mode     Mode
}

type navKey struct {
	chatID string
	userID string
}

// NavTracker stores navigation state per chat/user pair, so two users
// operating consoles in the same chat do not disturb each other.
type NavTracker struct {
	mu     sync.Mutex
	states map[navKey]NavState
}

func NewNavTracker() *NavTracker {
	return &NavTracker{states: make(map[navKey]NavState)}
}

// Get returns the stored state, or a fresh root state if none exists.
func (n *NavTracker) Get(chatID, userID string) NavState {
	n.mu.Lock()
	defer n.mu.Unlock()
	if st, ok := n.states[navKey{chatID, userID}]; ok {
		return st
	}
	return NavState{Category: RootCategory}
}

func (n *NavTracker) Put(chatID, userID string, st NavState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states[navKey{chatID, userID}] = st
}

// Drop forgets a pair's state, typically when its console message is closed.
func (n *NavTracker) Drop(chatID, userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.states, navKey{chatID, userID})
}

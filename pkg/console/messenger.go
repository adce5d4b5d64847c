package console

import (
	"context"

	"github.com/small-frappuccino/mirrorcore/pkg/catalog"
)

// Kinds is a bitmask of message kinds an edit session will accept.
type Kinds uint8

const (
	KindText Kinds = 1 << iota
	KindPhoto
	KindDocument
)

// Has reports whether k accepts any kind in other.
func (k Kinds) Has(other Kinds) bool { return k&other != 0 }

// Incoming is one inbound chat message, normalized away from the transport.
// Kind carries exactly one bit.
type Incoming struct {
	ChatID    string
	UserID    string
	MessageID string
	Kind      Kinds
	Text      string

	// Attachment is a transport-specific handle (URL or file ID) for photo
	// and document messages. BlobHandler knows how to fetch it.
	Attachment string
	Filename   string
}

// Button is one pressable menu element. Data is the action string delivered
// back through HandleAction when the button is pressed.
type Button struct {
	Label string
	Data  string
}

// Menu is one renderable console state: body text plus button rows.
type Menu struct {
	Title string
	Body  string
	Rows  [][]Button
	Color int
}

// Messenger is the chat transport. The console always edits its own message
// in place; it never posts a second menu.
type Messenger interface {
	EditMenu(chatID, messageID string, m Menu) error
	Notify(chatID, text string) error
	Popup(chatID, userID, text string) error
	DeleteMessage(chatID, messageID string) error
}

// SettingsCatalog is the read/write view of setting metadata and values the
// console operates on.
type SettingsCatalog interface {
	Get(key string) any
	Set(key string, value any) error
	DefaultOf(key string) any
	CategoryOf(key string) string
	Describe(key string) (catalog.Descriptor, bool)
	Keys(category string) []string
	Categories() []string
}

// ConfigStore is the durable mirror of the catalog. Upsert must be
// all-or-nothing across the given entries.
type ConfigStore interface {
	Upsert(values map[string]any) error
}

// SideEffectDispatcher reacts to committed changes (restarting watchers,
// rebuilding clients). Dispatch failures never roll back a commit.
type SideEffectDispatcher interface {
	OnSet(key string, value any) error
}

// BlobHandler stores an uploaded payload and returns the reference string to
// commit as the setting's value.
type BlobHandler interface {
	HandleBlob(ctx context.Context, key string, msg Incoming) (string, error)
}

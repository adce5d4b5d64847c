package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/small-frappuccino/mirrorcore/pkg/catalog"
)

// Shared fixtures for the console tests: a small catalog and in-memory fakes
// for the store, the messenger and the side-effect dispatcher.

func testCatalog() *catalog.Catalog {
	return catalog.NewFromDescriptors([]Descriptor{
		{Key: "WM_ENABLED", Type: catalog.TypeBool, Default: false, Category: "watermark"},
		{Key: "WM_TEXT", Type: catalog.TypeString, Default: "", Category: "watermark"},
		{Key: "WM_SIZE", Type: catalog.TypeInt, Default: 12, Category: "watermark"},
		{Key: "WM_OPACITY", Type: catalog.TypeFloat, Default: 0.5, Category: "watermark", UnitRange: true},
		{Key: "WM_IMAGE", Type: catalog.TypeString, Default: "", Category: "watermark", Blob: catalog.BlobPhoto},
		{Key: "WM_TAGS", Type: catalog.TypeStringList, Default: []string(nil), Category: "watermark"},
		{Key: "WM_EXTRA", Type: catalog.TypeStringMap, Default: map[string]string(nil), Category: "watermark"},
		{Key: "TOKEN", Type: catalog.TypeString, Default: "", Category: "auth", Sensitive: true},
		{Key: "KEEP_TRACKS", Type: catalog.TypeBool, Default: false, Category: "tracks", PairedKey: "SWAP_TRACKS"},
		{Key: "SWAP_TRACKS", Type: catalog.TypeBool, Default: false, Category: "tracks", PairedKey: "KEEP_TRACKS"},
		{
			Key:      "TOOLS",
			Type:     catalog.TypeString,
			Default:  "merge,watermark",
			Category: "tools",
			Members:  []string{"merge", "watermark"},
		},
	})
}

// Descriptor aliases keep the fixture table compact.
type Descriptor = catalog.Descriptor

// testCascade resets WM_ keys when the watermark tool is disabled.
func testCascade(cat *catalog.Catalog) func(string) []string {
	return func(member string) []string {
		if member == "watermark" {
			return cat.KeysWithPrefix("WM_")
		}
		return nil
	}
}

type fakeStore struct {
	mu      sync.Mutex
	batches []map[string]any
	err     error
}

func (s *fakeStore) Upsert(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = v
	}
	s.batches = append(s.batches, cp)
	return nil
}

func (s *fakeStore) last() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return nil
	}
	return s.batches[len(s.batches)-1]
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

type fakeMessenger struct {
	mu       sync.Mutex
	menus    []Menu
	notices  []string
	popups   []string
	deleted  []string
	editFail error
}

func (m *fakeMessenger) EditMenu(chatID, messageID string, menu Menu) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editFail != nil {
		return m.editFail
	}
	m.menus = append(m.menus, menu)
	return nil
}

func (m *fakeMessenger) Notify(chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, text)
	return nil
}

func (m *fakeMessenger) Popup(chatID, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.popups = append(m.popups, text)
	return nil
}

func (m *fakeMessenger) DeleteMessage(chatID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *fakeMessenger) lastMenu() Menu {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.menus) == 0 {
		return Menu{}
	}
	return m.menus[len(m.menus)-1]
}

type fakeEffects struct {
	mu   sync.Mutex
	seen []string
}

func (e *fakeEffects) OnSet(key string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, fmt.Sprintf("%s=%v", key, value))
	return nil
}

type fakeBlobs struct {
	ref string
	err error
}

func (b *fakeBlobs) HandleBlob(ctx context.Context, key string, msg Incoming) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return b.ref, nil
}

package console

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/small-frappuccino/mirrorcore/pkg/catalog"
)

func newTestConsole(t *testing.T, store *fakeStore, m *fakeMessenger) (*Console, *catalog.Catalog) {
	t.Helper()
	cat := testCatalog()
	c, err := New(Config{
		Catalog:      cat,
		Store:        store,
		Messenger:    m,
		Blobs:        &fakeBlobs{ref: "/blobs/stored.png"},
		ReplyTimeout: 250 * time.Millisecond,
		Cascade:      testCascade(cat),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, cat
}

func action(data string) Action {
	return Action{ChatID: "chat", UserID: "user", MessageID: "menu-1", Data: data}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHandleActionRejectsMalformedData(t *testing.T) {
	c, _ := newTestConsole(t, &fakeStore{}, &fakeMessenger{})

	for _, data := range []string{"", "cfg", "other verb", "cfg bogus"} {
		if err := c.HandleAction(context.Background(), action(data)); err == nil {
			t.Fatalf("HandleAction(%q) should fail", data)
		}
	}
}

func TestStartAndToggleFlow(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMessenger{}
	c, cat := newTestConsole(t, store, m)

	if err := c.HandleAction(context.Background(), action("cfg start watermark 0")); err != nil {
		t.Fatalf("start: %v", err)
	}
	if menu := m.lastMenu(); !strings.Contains(menu.Body, "watermark") {
		t.Fatalf("menu body %q should mention the category", menu.Body)
	}

	if err := c.HandleAction(context.Background(), action("cfg mode watermark 0 edit")); err != nil {
		t.Fatalf("mode: %v", err)
	}
	if err := c.HandleAction(context.Background(), action("cfg toggle WM_ENABLED true")); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if got := cat.Get("WM_ENABLED"); got != true {
		t.Fatalf("WM_ENABLED = %v, want true", got)
	}
	if store.count() != 1 {
		t.Fatalf("store saw %d batches, want 1", store.count())
	}
	// The toggle redraws the same menu message rather than posting a new one.
	if len(m.deleted) != 0 {
		t.Fatal("toggling must not delete the console message")
	}
}

func TestEditSessionCommitsReply(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMessenger{}
	c, cat := newTestConsole(t, store, m)

	if err := c.HandleAction(context.Background(), action("cfg start watermark 0")); err != nil {
		t.Fatalf("start: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.HandleAction(context.Background(), action("cfg editvar WM_TEXT"))
	}()
	waitUntil(t, "session armed", func() bool { return c.correlator.Armed("chat", "user") })

	// Unrelated traffic is not intercepted.
	if c.HandleMessage(Incoming{ChatID: "chat", UserID: "someone-else", Kind: KindText, Text: "hi"}) {
		t.Fatal("other users' messages must pass through")
	}

	if !c.HandleMessage(Incoming{ChatID: "chat", UserID: "user", MessageID: "reply-1", Kind: KindText, Text: "hello"}) {
		t.Fatal("the reply should be consumed")
	}
	if err := <-done; err != nil {
		t.Fatalf("editvar: %v", err)
	}

	if got := cat.Get("WM_TEXT"); got != "hello" {
		t.Fatalf("WM_TEXT = %v, want %q", got, "hello")
	}
	if len(m.deleted) != 1 || m.deleted[0] != "reply-1" {
		t.Fatalf("consumed reply should be deleted, got %v", m.deleted)
	}
	if c.correlator.Armed("chat", "user") {
		t.Fatal("session must be gone after the commit")
	}
}

func TestEditSessionTimeoutIsSilent(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMessenger{}
	c, cat := newTestConsole(t, store, m)

	if err := c.HandleAction(context.Background(), action("cfg editvar WM_TEXT")); err != nil {
		t.Fatalf("editvar: %v", err)
	}

	if got := cat.Get("WM_TEXT"); got != "" {
		t.Fatalf("WM_TEXT = %v, want unchanged", got)
	}
	if len(m.notices) != 0 {
		t.Fatalf("timeout must not notify, got %v", m.notices)
	}
	// The menu reverted from the editor prompt.
	if menu := m.lastMenu(); strings.Contains(menu.Body, "Send the new value") {
		t.Fatal("menu should have reverted after the timeout")
	}
}

func TestEditSessionCancel(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMessenger{}
	c, cat := newTestConsole(t, store, m)

	done := make(chan error, 1)
	go func() {
		done <- c.HandleAction(context.Background(), action("cfg editvar WM_TEXT"))
	}()
	waitUntil(t, "session armed", func() bool { return c.correlator.Armed("chat", "user") })

	if err := c.HandleAction(context.Background(), action("cfg cancel")); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("editvar: %v", err)
	}

	if got := cat.Get("WM_TEXT"); got != "" {
		t.Fatalf("WM_TEXT = %v, want unchanged", got)
	}
	found := false
	for _, n := range m.notices {
		if strings.Contains(n, "cancelled") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a cancellation notice, got %v", m.notices)
	}
}

func TestRearmingReplacesSession(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMessenger{}
	c, cat := newTestConsole(t, store, m)

	first := make(chan error, 1)
	go func() {
		first <- c.HandleAction(context.Background(), action("cfg editvar WM_TEXT"))
	}()
	waitUntil(t, "first session armed", func() bool { return c.correlator.Armed("chat", "user") })

	second := make(chan error, 1)
	go func() {
		second <- c.HandleAction(context.Background(), action("cfg editvar WM_SIZE"))
	}()
	// The first handler finishes with a cancellation once the second arms.
	if err := <-first; err != nil {
		t.Fatalf("first editvar: %v", err)
	}
	waitUntil(t, "second session armed", func() bool { return c.correlator.Armed("chat", "user") })

	if !c.HandleMessage(Incoming{ChatID: "chat", UserID: "user", MessageID: "reply-2", Kind: KindText, Text: "42"}) {
		t.Fatal("reply should reach the second session")
	}
	if err := <-second; err != nil {
		t.Fatalf("second editvar: %v", err)
	}

	if got := cat.Get("WM_SIZE"); got != 42 {
		t.Fatalf("WM_SIZE = %v, want 42", got)
	}
	if got := cat.Get("WM_TEXT"); got != "" {
		t.Fatalf("WM_TEXT = %v, the replaced session must not commit", got)
	}
}

func TestUploadSessionCommitsReference(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMessenger{}
	c, cat := newTestConsole(t, store, m)

	done := make(chan error, 1)
	go func() {
		// editvar on a blob key routes through the upload flow.
		done <- c.HandleAction(context.Background(), action("cfg editvar WM_IMAGE"))
	}()
	waitUntil(t, "session armed", func() bool { return c.correlator.Armed("chat", "user") })

	// Text does not satisfy an upload session.
	if c.HandleMessage(Incoming{ChatID: "chat", UserID: "user", Kind: KindText, Text: "nope"}) {
		t.Fatal("text must not satisfy an upload session")
	}

	if !c.HandleMessage(Incoming{ChatID: "chat", UserID: "user", MessageID: "photo-1", Kind: KindPhoto, Attachment: "http://x/pic.png"}) {
		t.Fatal("photo should be consumed")
	}
	if err := <-done; err != nil {
		t.Fatalf("upload: %v", err)
	}

	if got := cat.Get("WM_IMAGE"); got != "/blobs/stored.png" {
		t.Fatalf("WM_IMAGE = %v, want stored blob reference", got)
	}
}

func TestViewActionShowsPopup(t *testing.T) {
	m := &fakeMessenger{}
	c, cat := newTestConsole(t, &fakeStore{}, m)

	if err := cat.Set("WM_SIZE", 30); err != nil {
		t.Fatal(err)
	}
	if err := c.HandleAction(context.Background(), action("cfg view WM_SIZE")); err != nil {
		t.Fatalf("view: %v", err)
	}

	if len(m.popups) != 1 || !strings.Contains(m.popups[0], "30") {
		t.Fatalf("popup should show the current value, got %v", m.popups)
	}
}

func TestSensitiveValuesStayMaskedInMenus(t *testing.T) {
	m := &fakeMessenger{}
	c, cat := newTestConsole(t, &fakeStore{}, m)

	if err := cat.Set("TOKEN", "s3cret"); err != nil {
		t.Fatal(err)
	}
	if err := c.HandleAction(context.Background(), action("cfg start auth 0")); err != nil {
		t.Fatalf("start: %v", err)
	}

	menu := m.lastMenu()
	if strings.Contains(menu.Body, "s3cret") {
		t.Fatal("sensitive values must never render")
	}
	if !strings.Contains(menu.Body, "(configured)") {
		t.Fatalf("sensitive values should render masked, got %q", menu.Body)
	}
}

func TestCloseDeletesConsoleMessage(t *testing.T) {
	m := &fakeMessenger{}
	c, _ := newTestConsole(t, &fakeStore{}, m)

	if err := c.HandleAction(context.Background(), action("cfg close")); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(m.deleted) != 1 || m.deleted[0] != "menu-1" {
		t.Fatalf("close should delete the console message, got %v", m.deleted)
	}
}

func TestResetCategoryAction(t *testing.T) {
	store := &fakeStore{}
	m := &fakeMessenger{}
	c, cat := newTestConsole(t, store, m)

	if err := cat.Set("WM_TEXT", "mark"); err != nil {
		t.Fatal(err)
	}
	if err := c.HandleAction(context.Background(), action("cfg resetcat watermark")); err != nil {
		t.Fatalf("resetcat: %v", err)
	}
	if got := cat.Get("WM_TEXT"); got != "" {
		t.Fatalf("WM_TEXT = %v, want default", got)
	}
	if store.count() != 1 {
		t.Fatalf("store saw %d batches, want 1", store.count())
	}
}

package console

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommitBoolIsStrict(t *testing.T) {
	cat := testCatalog()
	store := &fakeStore{}
	ec := NewEditController(cat, store, nil)

	if _, err := ec.Commit("WM_ENABLED", "True"); err != nil {
		t.Fatalf("Commit(True): %v", err)
	}
	if got := cat.Get("WM_ENABLED"); got != true {
		t.Fatalf("WM_ENABLED = %v, want true", got)
	}

	_, err := ec.Commit("WM_ENABLED", "yes")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Commit(yes) err = %v, want ValidationError", err)
	}
	if got := cat.Get("WM_ENABLED"); got != true {
		t.Fatalf("rejected input must not change the value, got %v", got)
	}
}

func TestCommitIntFallsBackToDefault(t *testing.T) {
	cat := testCatalog()
	ec := NewEditController(cat, &fakeStore{}, nil)

	res, err := ec.Commit("WM_SIZE", "24")
	if err != nil || res.Fallback {
		t.Fatalf("Commit(24) = %+v, %v", res, err)
	}
	if got := cat.Get("WM_SIZE"); got != 24 {
		t.Fatalf("WM_SIZE = %v, want 24", got)
	}

	res, err = ec.Commit("WM_SIZE", "huge")
	if err != nil {
		t.Fatalf("Commit(huge): %v", err)
	}
	if !res.Fallback {
		t.Fatal("unparsable int must report Fallback")
	}
	if got := cat.Get("WM_SIZE"); got != 12 {
		t.Fatalf("WM_SIZE = %v, want default 12", got)
	}
}

func TestCommitUnitFloatClamps(t *testing.T) {
	cat := testCatalog()
	ec := NewEditController(cat, &fakeStore{}, nil)

	cases := []struct {
		raw  string
		want float64
	}{
		{"0.35", 0.35},
		{"5.0", 1.0},
		{"-3", 0.0},
	}
	for _, tc := range cases {
		if _, err := ec.Commit("WM_OPACITY", tc.raw); err != nil {
			t.Fatalf("Commit(%s): %v", tc.raw, err)
		}
		if got := cat.Get("WM_OPACITY"); got != tc.want {
			t.Fatalf("Commit(%s): WM_OPACITY = %v, want %v", tc.raw, got, tc.want)
		}
	}

	if _, err := ec.Commit("WM_OPACITY", "opaque"); err == nil {
		t.Fatal("non-numeric float input must be rejected")
	}
}

func TestCommitStructuredValuesAreStrict(t *testing.T) {
	cat := testCatalog()
	ec := NewEditController(cat, &fakeStore{}, nil)

	if _, err := ec.Commit("WM_TAGS", `["a","b"]`); err != nil {
		t.Fatalf("Commit list: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, cat.Get("WM_TAGS")); diff != "" {
		t.Fatalf("WM_TAGS mismatch (-want +got):\n%s", diff)
	}

	if _, err := ec.Commit("WM_TAGS", `a, b`); err == nil {
		t.Fatal("malformed list must be rejected")
	}
	if _, err := ec.Commit("WM_EXTRA", `{"k":"v"}`); err != nil {
		t.Fatalf("Commit map: %v", err)
	}
	if _, err := ec.Commit("WM_EXTRA", `{"k":1}`); err == nil {
		t.Fatal("non-string map values must be rejected")
	}
}

func TestCommitUnknownKey(t *testing.T) {
	ec := NewEditController(testCatalog(), &fakeStore{}, nil)

	if _, err := ec.Commit("NOPE", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("err = %v, want ErrUnknownKey", err)
	}
}

func TestCommitRollsBackOnPersistenceFailure(t *testing.T) {
	cat := testCatalog()
	store := &fakeStore{err: fmt.Errorf("disk full")}
	ec := NewEditController(cat, store, nil)

	if _, err := ec.Commit("WM_TEXT", "hello"); err == nil {
		t.Fatal("expected persistence error")
	} else {
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("err = %v, want PersistenceError", err)
		}
	}
	if got := cat.Get("WM_TEXT"); got != "" {
		t.Fatalf("WM_TEXT = %q, want rollback to %q", got, "")
	}
}

func TestCommitSensitiveWarnsAboutRestart(t *testing.T) {
	cat := testCatalog()
	effects := &fakeEffects{}
	ec := NewEditController(cat, &fakeStore{}, effects)

	res, err := ec.Commit("TOKEN", "s3cret")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if res.Warning == "" {
		t.Fatal("sensitive commit must carry a restart warning")
	}
	if len(effects.seen) != 1 {
		t.Fatalf("effects ran %d times, want 1", len(effects.seen))
	}
}

func TestApplyPersistsExactlyOneBatch(t *testing.T) {
	cat := testCatalog()
	store := &fakeStore{}
	ec := NewEditController(cat, store, nil)

	if _, err := ec.Apply("WM_IMAGE", "/blobs/wm.png"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("store saw %d batches, want 1", store.count())
	}
	if diff := cmp.Diff(map[string]any{"WM_IMAGE": "/blobs/wm.png"}, store.last()); diff != "" {
		t.Fatalf("batch mismatch (-want +got):\n%s", diff)
	}
}

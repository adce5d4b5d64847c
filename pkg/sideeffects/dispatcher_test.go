package sideeffects

import (
	"fmt"
	"testing"
)

func TestOnSetRunsMatchingHooks(t *testing.T) {
	d := New()
	var ran []string

	d.Register("WATERMARK_", func(key string, value any) error {
		ran = append(ran, "watermark:"+key)
		return nil
	})
	d.Register("MERGE_", func(key string, value any) error {
		ran = append(ran, "merge:"+key)
		return nil
	})

	if err := d.OnSet("WATERMARK_KEY", "x"); err != nil {
		t.Fatalf("OnSet: %v", err)
	}
	if len(ran) != 1 || ran[0] != "watermark:WATERMARK_KEY" {
		t.Fatalf("ran = %v", ran)
	}

	if err := d.OnSet("UNRELATED", 1); err != nil {
		t.Fatalf("OnSet: %v", err)
	}
	if len(ran) != 1 {
		t.Fatalf("non-matching key ran hooks: %v", ran)
	}
}

func TestOnSetEmptyPrefixMatchesEverything(t *testing.T) {
	d := New()
	count := 0
	d.Register("", func(key string, value any) error {
		count++
		return nil
	})

	d.OnSet("A", 1)
	d.OnSet("B", 2)
	if count != 2 {
		t.Fatalf("catch-all hook ran %d times, want 2", count)
	}
}

func TestOnSetRunsAllHooksDespiteFailures(t *testing.T) {
	d := New()
	ran := 0

	d.Register("KEY", func(key string, value any) error {
		ran++
		return fmt.Errorf("first failed")
	})
	d.Register("KEY", func(key string, value any) error {
		ran++
		return nil
	})

	err := d.OnSet("KEY", true)
	if err == nil {
		t.Fatal("expected joined hook error")
	}
	if ran != 2 {
		t.Fatalf("ran %d hooks, want both", ran)
	}
}

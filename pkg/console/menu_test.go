package console

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/small-frappuccino/mirrorcore/pkg/catalog"
)

func wideCatalog(n int) *catalog.Catalog {
	descs := make([]catalog.Descriptor, 0, n)
	for i := 0; i < n; i++ {
		descs = append(descs, catalog.Descriptor{
			Key:      fmt.Sprintf("OPT_%02d", i),
			Type:     catalog.TypeInt,
			Default:  0,
			Category: "wide",
		})
	}
	return catalog.NewFromDescriptors(descs)
}

// collectKeyActions gathers the key selection targets of one rendered page.
func collectKeyActions(m Menu) []string {
	var out []string
	for _, row := range m.Rows {
		for _, b := range row {
			fields := strings.Fields(b.Data)
			if len(fields) >= 3 && (fields[1] == "editvar" || fields[1] == "view") {
				out = append(out, fields[2])
			}
		}
	}
	return out
}

func TestPaginationCoversEveryKeyExactlyOnce(t *testing.T) {
	r := NewMenuRenderer(wideCatalog(23))

	seen := make(map[string]int)
	for page := 0; page < 3; page++ {
		menu, got := r.Render("wide", page, ModeEdit)
		if got != page {
			t.Fatalf("page %d normalized to %d", page, got)
		}
		for _, key := range collectKeyActions(menu) {
			seen[key]++
		}
	}

	if len(seen) != 23 {
		t.Fatalf("saw %d distinct keys across pages, want 23", len(seen))
	}
	for key, n := range seen {
		if n != 1 {
			t.Fatalf("key %s rendered %d times", key, n)
		}
	}
}

func TestPaginationWrapsBothDirections(t *testing.T) {
	r := NewMenuRenderer(wideCatalog(23)) // 3 pages

	if _, page := r.Render("wide", -1, ModeView); page != 2 {
		t.Fatalf("page -1 wrapped to %d, want 2", page)
	}
	if _, page := r.Render("wide", 3, ModeView); page != 0 {
		t.Fatalf("page 3 wrapped to %d, want 0", page)
	}
	if _, page := r.Render("wide", 7, ModeView); page != 1 {
		t.Fatalf("page 7 wrapped to %d, want 1", page)
	}
}

func TestSinglePageHasNoPaginationRow(t *testing.T) {
	r := NewMenuRenderer(wideCatalog(4))

	menu, _ := r.Render("wide", 0, ModeView)
	for _, row := range menu.Rows {
		for _, b := range row {
			if b.Label == "◀" || b.Label == "▶" {
				t.Fatal("single-page menus must not paginate")
			}
		}
	}
}

func TestViewModeRendersViewButtons(t *testing.T) {
	r := NewMenuRenderer(testCatalog())

	menu, _ := r.Render("watermark", 0, ModeView)
	for _, key := range []string{"WM_ENABLED", "WM_TEXT", "WM_IMAGE"} {
		if !hasButton(menu, fmt.Sprintf("%s view %s", Namespace, key)) {
			t.Fatalf("view mode missing view button for %s", key)
		}
	}
	if hasButtonPrefix(menu, Namespace+" toggle ") || hasButtonPrefix(menu, Namespace+" editvar ") {
		t.Fatal("view mode must not render edit actions")
	}
}

func TestEditModeRoutesByType(t *testing.T) {
	r := NewMenuRenderer(testCatalog())

	menu, _ := r.Render("watermark", 0, ModeEdit)
	if !hasButton(menu, Namespace+" toggle WM_ENABLED true") {
		t.Fatal("bool key must render a toggle to the opposite value")
	}
	if !hasButton(menu, Namespace+" editvar WM_TEXT") {
		t.Fatal("string key must render an editvar action")
	}
	if !hasButton(menu, Namespace+" upload WM_IMAGE") {
		t.Fatal("blob key must render an upload action")
	}
	if !hasButton(menu, Namespace+" resetcat watermark") {
		t.Fatal("edit mode must offer a category reset")
	}
}

func TestEnabledSetRendersMembers(t *testing.T) {
	r := NewMenuRenderer(testCatalog())

	menu, _ := r.Render("tools", 0, ModeEdit)
	// Both members are on by default, so the buttons offer disabling.
	if !hasButton(menu, Namespace+" togmember TOOLS merge false") {
		t.Fatal("missing member toggle for merge")
	}
	if !hasButton(menu, Namespace+" togmember TOOLS watermark false") {
		t.Fatal("missing member toggle for watermark")
	}
	if !hasButton(menu, Namespace+" enableall TOOLS") || !hasButton(menu, Namespace+" disableall TOOLS") {
		t.Fatal("enabled-set category must render enable/disable all")
	}

	viewMenu, _ := r.Render("tools", 0, ModeView)
	if hasButtonPrefix(viewMenu, Namespace+" togmember ") {
		t.Fatal("view mode must not toggle members")
	}
}

func TestEditorPromptOffersCancelAndDefault(t *testing.T) {
	cat := testCatalog()
	r := NewMenuRenderer(cat)
	desc, _ := cat.Describe("WM_TEXT")

	menu := r.RenderEditor(desc, NavState{Category: "watermark", Page: 1, Mode: ModeEdit}, 60*time.Second)
	if !hasButton(menu, Namespace+" cancel") {
		t.Fatal("editor prompt must offer cancel")
	}
	if !hasButton(menu, Namespace+" default WM_TEXT") {
		t.Fatal("editor prompt must offer reset to default")
	}
	if !strings.Contains(menu.Body, "60 seconds") {
		t.Fatalf("editor prompt should state the deadline, got %q", menu.Body)
	}
}

func TestRootMenuListsCategories(t *testing.T) {
	r := NewMenuRenderer(testCatalog())

	menu := r.RenderRoot()
	for _, cat := range []string{"watermark", "tools", "tracks", "auth"} {
		if !hasButton(menu, fmt.Sprintf("%s start %s 0", Namespace, cat)) {
			t.Fatalf("root menu missing category %s", cat)
		}
	}
	if !hasButton(menu, Namespace+" close") {
		t.Fatal("root menu must offer close")
	}
}

func hasButton(m Menu, data string) bool {
	for _, row := range m.Rows {
		for _, b := range row {
			if b.Data == data {
				return true
			}
		}
	}
	return false
}

func hasButtonPrefix(m Menu, prefix string) bool {
	for _, row := range m.Rows {
		for _, b := range row {
			if strings.HasPrefix(b.Data, prefix) {
				return true
			}
		}
	}
	return false
}

package help

import (
	"strings"
	"testing"

	"github.com/rebeliceyang/lazyaudience/internal/ui/theme"
)

func TestSections_NoDuplicateKeys(t *testing.T) {
	for _, section := range Sections() {
		seen := make(map[string]bool)
		for _, kb := range section.Keys {
			if seen[kb.Key] {
				t.Errorf("%s: key %q listed twice", section.Title, kb.Key)
			}
			seen[kb.Key] = true
		}
	}
}

func TestRender_ListsHistorySection(t *testing.T) {
	view := Render(100, 80, theme.DefaultTheme())
	for _, want := range []string{"History", "Compile history", "Sort by usage"} {
		if !strings.Contains(view, want) {
			t.Errorf("help view missing %q", want)
		}
	}
}

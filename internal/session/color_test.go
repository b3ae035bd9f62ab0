package session

import "testing"

func TestUserColorIsStable(t *testing.T) {
	a := UserColor("alice")
	b := UserColor("alice")
	if a != b {
		t.Fatalf("same name must map to same color: %s vs %s", a, b)
	}
}

func TestUserColorFromPalette(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range userColors {
		seen[c] = true
	}
	for _, name := range []string{"", "a", "alice", "bob", "Guest-1f3c", "日本語"} {
		if !seen[UserColor(name)] {
			t.Fatalf("color for %q not from palette: %s", name, UserColor(name))
		}
	}
}

// This name hashes to exactly math.MinInt32, where int32 negation wraps
// instead of producing a magnitude.
func TestUserColorHashMinInt32(t *testing.T) {
	got := UserColor("fzzggxww\U000d2fd2")
	if got != userColors[8] {
		t.Fatalf("expected %s for MinInt32 hash, got %s", userColors[8], got)
	}
}

package handdrawn

import (
	"fmt"
	"regexp"
	"testing"
)

func TestGreyForID(t *testing.T) {
	grey1 := greyForID("package-a")
	grey2 := greyForID("package-b")

	if grey1 == grey2 {
		t.Errorf("greyForID() should produce different colors for different IDs")
	}
	if greyForID("package-a") != grey1 {
		t.Errorf("greyForID() should be deterministic")
	}

	hexColorRegex := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	if !hexColorRegex.MatchString(grey1) {
		t.Errorf("greyForID() should produce valid hex color, got %q", grey1)
	}
}

func TestGreyForID_Range(t *testing.T) {
	for _, slot := range []string{"", "L", "R", "LL", "LR", "RL", "RR", "LLL", "RRR"} {
		grey := greyForID(slot)

		var r, g, b int
		if _, err := fmt.Sscanf(grey, "#%02x%02x%02x", &r, &g, &b); err != nil {
			t.Errorf("failed to parse color %q: %v", grey, err)
			continue
		}
		if r != g || g != b {
			t.Errorf("greyForID(%q) = %q is not a grey color", slot, grey)
		}
		if r < greyMin || r > greyMax {
			t.Errorf("greyForID(%q) = %q value %d outside range [%d, %d]", slot, grey, r, greyMin, greyMax)
		}
	}
}

func TestHash(t *testing.T) {
	if hash("test", 42) != hash("test", 42) {
		t.Errorf("hash() should be deterministic")
	}
	if hash("test", 42) == hash("test", 43) {
		t.Errorf("hash() with different seed should produce different hash")
	}
	if hash("test", 42) == hash("other", 42) {
		t.Errorf("hash() with different input should produce different hash")
	}
	if hash("test", 0) != hash("test", 0) {
		t.Errorf("hash() with zero seed should be deterministic")
	}
}

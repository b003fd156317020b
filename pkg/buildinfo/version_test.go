package buildinfo

import (
	"strings"
	"testing"
)

func TestShort(t *testing.T) {
	oldV, oldC := Version, Commit
	defer func() { Version, Commit = oldV, oldC }()

	Version, Commit = "v1.0.0", "0123456789abcdef"
	if got := Short(); got != "v1.0.0 (0123456)" {
		t.Errorf("Short() = %q", got)
	}
	Commit = "none"
	if got := Short(); got != "v1.0.0 (none)" {
		t.Errorf("Short() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q", Template())
	}
}

package navstate

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dalemusser/inclouds/internal/app/system/fserr"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		escapes bool
	}{
		{"", "", false},
		{".", "", false},
		{"docs", "docs", false},
		{"docs/", "docs", false},
		{"docs//2024/./q1", "docs/2024/q1", false},
		{`docs\2024`, "docs/2024", false},
		{"docs/../photos", "photos", false},
		{"..", "", true},
		{"../../etc", "", true},
		{"docs/../../x", "", true},
		{"/etc/passwd", "", true},
	}
	for _, tt := range tests {
		got, err := Clean(tt.in)
		if tt.escapes {
			if !errors.Is(err, fserr.ErrPathEscape) {
				t.Errorf("Clean(%q) error = %v, want ErrPathEscape", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Clean(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()

	loc, err := Resolve(root, "")
	if err != nil {
		t.Fatalf("Resolve(root) error = %v", err)
	}
	if !loc.IsRoot || loc.Abs != root || len(loc.Crumbs) != 1 {
		t.Errorf("Resolve(root) = %+v", loc)
	}

	loc, err = Resolve(root, "docs/2024")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if loc.IsRoot {
		t.Error("expected non-root location")
	}
	if loc.Abs != filepath.Join(root, "docs", "2024") {
		t.Errorf("Abs = %q", loc.Abs)
	}
	if loc.Parent != "docs" {
		t.Errorf("Parent = %q, want docs", loc.Parent)
	}
	want := []Crumb{{"Home", ""}, {"docs", "docs"}, {"2024", "docs/2024"}}
	if len(loc.Crumbs) != len(want) {
		t.Fatalf("Crumbs = %+v", loc.Crumbs)
	}
	for i := range want {
		if loc.Crumbs[i] != want[i] {
			t.Errorf("Crumbs[%d] = %+v, want %+v", i, loc.Crumbs[i], want[i])
		}
	}

	if _, err := Resolve(root, "../outside"); !errors.Is(err, fserr.ErrPathEscape) {
		t.Errorf("Resolve(../outside) error = %v, want ErrPathEscape", err)
	}
}

func TestJoinParentBase(t *testing.T) {
	if got := Join(RootToken, "docs"); got != "docs" {
		t.Errorf("Join(root, docs) = %q", got)
	}
	if got := Join("docs", "a.txt"); got != "docs/a.txt" {
		t.Errorf("Join(docs, a.txt) = %q", got)
	}
	if got := Parent("docs"); got != RootToken {
		t.Errorf("Parent(docs) = %q", got)
	}
	if got := Parent("docs/a.txt"); got != "docs" {
		t.Errorf("Parent(docs/a.txt) = %q", got)
	}
	if got := Base("docs/a.txt"); got != "a.txt" {
		t.Errorf("Base() = %q", got)
	}
	if got := Base(RootToken); got != "" {
		t.Errorf("Base(root) = %q", got)
	}
}

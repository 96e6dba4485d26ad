package models

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"folder", KindFolder, true},
		{"folders", KindFolder, true},
		{"file", KindFile, true},
		{"files", KindFile, true},
		{"dir", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEntryParentAndExt(t *testing.T) {
	tests := []struct {
		path   string
		name   string
		parent string
		ext    string
	}{
		{"a.txt", "a.txt", "", ".txt"},
		{"docs/Report.PDF", "Report.PDF", "docs", ".pdf"},
		{"docs/2024/notes", "notes", "docs/2024", ""},
	}
	for _, tt := range tests {
		e := Entry{Path: tt.path, Name: tt.name}
		if got := e.Parent(); got != tt.parent {
			t.Errorf("Entry{%q}.Parent() = %q, want %q", tt.path, got, tt.parent)
		}
		if got := e.Ext(); got != tt.ext {
			t.Errorf("Entry{%q}.Ext() = %q, want %q", tt.path, got, tt.ext)
		}
	}
}

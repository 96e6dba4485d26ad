package normalize

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Reports", "Reports"},
		{"  Reports 2024  ", "Reports 2024"},
		{"\ta.txt\n", "a.txt"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPathToken(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"docs", "docs"},
		{"/docs/2024/", "docs/2024"},
		{`docs\2024`, "docs/2024"},
		{"  docs  ", "docs"},
		{"", ""},
		{"/", ""},
		{"../etc", "../etc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := PathToken(tt.input); got != tt.want {
				t.Errorf("PathToken(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"folder", "folder"},
		{" FILE ", "file"},
		{"Folder", "folder"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Kind(tt.input); got != tt.want {
				t.Errorf("Kind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

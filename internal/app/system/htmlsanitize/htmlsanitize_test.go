package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		contains   []string
		notContain []string
	}{
		{
			name:       "removes script tags",
			input:      `<p>Hello</p><script>alert('xss')</script>`,
			contains:   []string{"<p>Hello</p>"},
			notContain: []string{"<script>", "alert"},
		},
		{
			name:       "removes event handlers",
			input:      `<p onclick="alert(1)">Click</p>`,
			contains:   []string{"<p>Click</p>"},
			notContain: []string{"onclick"},
		},
		{
			name:       "removes javascript urls",
			input:      `<a href="javascript:alert(1)">x</a>`,
			notContain: []string{"javascript:"},
		},
		{
			name:       "removes iframes",
			input:      `<iframe src="https://evil.example"></iframe><p>ok</p>`,
			contains:   []string{"<p>ok</p>"},
			notContain: []string{"iframe"},
		},
		{
			name:     "keeps tables",
			input:    `<table><tr><td colspan="2">cell</td></tr></table>`,
			contains: []string{"<table>", `colspan="2"`, "cell"},
		},
		{
			name:     "external links get noreferrer",
			input:    `<a href="https://example.com">site</a>`,
			contains: []string{`rel="nofollow noreferrer noopener"`, `target="_blank"`},
		},
		{
			name:  "empty input",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Sanitize(%q) = %q, should contain %q", tt.input, got, s)
				}
			}
			for _, s := range tt.notContain {
				if strings.Contains(got, s) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, s)
				}
			}
		})
	}
}

func TestDocumentDropsHead(t *testing.T) {
	doc := `<!doctype html><html><head><title>T</title><style>body{}</style><script>x()</script></head><body><h1>Report</h1></body></html>`
	got := string(Document(doc))
	if !strings.Contains(got, "<h1>Report</h1>") {
		t.Errorf("Document() = %q, missing body", got)
	}
	for _, bad := range []string{"<script", "<style", "<head"} {
		if strings.Contains(got, bad) {
			t.Errorf("Document() = %q, should not contain %q", got, bad)
		}
	}
}

func TestStripTags(t *testing.T) {
	if got := StripTags("<b>bold</b> text"); got != "bold text" {
		t.Errorf("StripTags() = %q", got)
	}
}

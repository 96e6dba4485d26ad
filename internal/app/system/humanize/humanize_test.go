package humanize

import "testing"

func TestBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero bytes", 0, "0 B"},
		{"1 byte", 1, "1 B"},
		{"1023 bytes", 1023, "1023 B"},
		{"1 KB", 1024, "1.0 KB"},
		{"1.5 KB", 1536, "1.5 KB"},
		{"1 MB", 1048576, "1.0 MB"},
		{"500 MB", 524288000, "500.0 MB"},
		{"1 GB", 1073741824, "1.0 GB"},
		{"10 GB", 10737418240, "10.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bytes(tt.bytes); got != tt.want {
				t.Errorf("Bytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestMegabytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0.00 MB"},
		{524288, "0.50 MB"},
		{1048576, "1.00 MB"},
		{1572864, "1.50 MB"},
	}
	for _, tt := range tests {
		if got := Megabytes(tt.bytes); got != tt.want {
			t.Errorf("Megabytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(42.25); got != "42.2%" && got != "42.3%" {
		t.Errorf("Percent(42.25) = %q", got)
	}
	if got := Percent(0); got != "0.0%" {
		t.Errorf("Percent(0) = %q", got)
	}
}

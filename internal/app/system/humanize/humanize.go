// Package humanize formats byte counts for display.
package humanize

import "fmt"

const (
	KB = 1024
	MB = KB * 1024
	GB = MB * 1024
)

// Bytes formats a size in bytes to a human-readable string.
func Bytes(bytes int64) string {
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Megabytes formats a size as megabytes with two decimals, the unit used
// by the storage usage panel.
func Megabytes(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
}

// Percent formats a percentage with one decimal.
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

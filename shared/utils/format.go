package utils

import (
	"fmt"
	"time"
)

// SizeDisplay renders a byte count for humans: "842 bytes", "1.5 KB",
// "10.0 MB". Units step at 1024.
func SizeDisplay(sizeBytes int64) string {
	const unit = 1024.0

	negative := sizeBytes < 0
	size := float64(sizeBytes)
	if negative {
		size = -size
	}

	var out string
	switch {
	case size < unit:
		if size == 1 {
			out = "1 byte"
		} else {
			out = fmt.Sprintf("%d bytes", int64(size))
		}
	case size < unit*unit:
		out = fmt.Sprintf("%.1f KB", size/unit)
	case size < unit*unit*unit:
		out = fmt.Sprintf("%.1f MB", size/(unit*unit))
	case size < unit*unit*unit*unit:
		out = fmt.Sprintf("%.1f GB", size/(unit*unit*unit))
	default:
		out = fmt.Sprintf("%.1f TB", size/(unit*unit*unit*unit))
	}

	if negative {
		return "-" + out
	}
	return out
}

// CreatedDisplay renders an upload timestamp as "2006-01-02 15:04".
func CreatedDisplay(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// DateDisplay renders a date the way page copy refers to deadlines,
// e.g. "Jan 2, 2030".
func DateDisplay(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

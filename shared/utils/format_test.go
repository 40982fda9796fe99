package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSizeDisplay(t *testing.T) {
	tests := []struct {
		name     string
		size     int64
		expected string
	}{
		{"zero", 0, "0 bytes"},
		{"one byte", 1, "1 byte"},
		{"bytes", 842, "842 bytes"},
		{"just below KB", 1023, "1023 bytes"},
		{"kilobytes", 1536, "1.5 KB"},
		{"megabytes", 10 << 20, "10.0 MB"},
		{"five megabytes", 5242880, "5.0 MB"},
		{"gigabytes", 3 << 30, "3.0 GB"},
		{"negative", -1536, "-1.5 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SizeDisplay(tt.size))
		})
	}
}

func TestCreatedDisplay(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 5, 33, 0, time.UTC)
	assert.Equal(t, "2025-03-14 09:05", CreatedDisplay(ts))
}

func TestDateDisplay(t *testing.T) {
	ts := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Jan 2, 2030", DateDisplay(ts))
}

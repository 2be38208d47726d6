package repository

import "time"

// IsValidWindow returns true if w is a supported lookback window.
func IsValidWindow(w Window) bool {
	switch w {
	case Win7d, Win30d, Win90d:
		return true
	default:
		return false
	}
}

// DefaultWindow returns the default lookback window.
func DefaultWindow() Window { return Win30d }

// NormalizeWindow converts raw string to a valid window (or default).
func NormalizeWindow(s string) Window {
	if s == "" {
		return DefaultWindow()
	}
	w := Window(s)
	if IsValidWindow(w) {
		return w
	}
	return DefaultWindow()
}

// Duration returns the window's span.
func (w Window) Duration() time.Duration {
	switch w {
	case Win7d:
		return 7 * 24 * time.Hour
	case Win90d:
		return 90 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

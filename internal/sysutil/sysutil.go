// Package sysutil holds process-level helpers shared by the CLI and config.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

// ParseLogLevel maps a case-insensitive level name to a zerolog level.
// "warning" is accepted for warn; blank or unknown names yield info.
func ParseLogLevel(lvl string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	}
	return zerolog.InfoLevel
}

// SetLogLevel sets the global zerolog level from a name and returns it.
func SetLogLevel(lvl string) zerolog.Level {
	l := ParseLogLevel(lvl)
	zerolog.SetGlobalLevel(l)
	return l
}

// ParseBool reads the usual env spellings of a boolean. ok is false when
// v is blank or not recognised, so callers can fall back to a default.
func ParseBool(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	}
	return false, false
}

// FirstNonEmpty returns the first value that is not blank, unmodified.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

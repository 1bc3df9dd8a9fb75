package sysutil

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"panic", zerolog.PanicLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := SetLogLevel(tc.in); got != tc.want {
			t.Fatalf("SetLogLevel(%q) returned %v; want %v", tc.in, got, tc.want)
		}
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) set %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	cases := []struct {
		in        string
		value, ok bool
	}{
		{"1", true, true},
		{" YES ", true, true},
		{"on", true, true},
		{"0", false, true},
		{"Off", false, true},
		{"n", false, true},
		{"", false, false},
		{"maybe", false, false},
	}
	for _, c := range cases {
		v, ok := ParseBool(c.in)
		if v != c.value || ok != c.ok {
			t.Fatalf("ParseBool(%q) = (%v,%v); want (%v,%v)", c.in, v, ok, c.value, c.ok)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q", got)
	}
	if got := FirstNonEmpty(" ", "\t"); got != "" {
		t.Fatalf("blank values must be skipped, got %q", got)
	}
	if got := FirstNonEmpty("", "debug", "info"); got != "debug" {
		t.Fatalf("FirstNonEmpty = %q; want debug", got)
	}
}

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New("TST", LevelWarn, &buf)
	l.Infof("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing logged below level, got %q", buf.String())
	}
	l.Warnf("should appear %d", 1)
	if !strings.Contains(buf.String(), "should appear 1") {
		t.Fatalf("missing expected message: %q", buf.String())
	}
}

func TestCriticalCallback(t *testing.T) {
	var buf bytes.Buffer
	l := New("TST", LevelInfo, &buf)
	var got string
	l.OnCritical(func(msg string) { got = msg })
	l.Criticalf("invariant broken: %s", "tip missing")
	if got != "invariant broken: tip missing" {
		t.Fatalf("callback did not receive message, got %q", got)
	}
}

func TestLevelFromString(t *testing.T) {
	cases := map[string]Level{
		"trace": LevelTrace, "DEBUG": LevelDebug, "Info": LevelInfo,
		"warn": LevelWarn, "error": LevelError, "critical": LevelCritical,
		"off": LevelOff, "garbage": LevelInfo,
	}
	for s, want := range cases {
		if got := LevelFromString(s); got != want {
			t.Fatalf("LevelFromString(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestIpAddrRedaction(t *testing.T) {
	if got := IpAddr("192.168.1.42/24"); got != "192.168.1.0/24" {
		t.Fatalf("got %q", got)
	}
}

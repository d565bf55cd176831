package httpapi

import (
	"net/http/httptest"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":        LevelOff,
		"off":     LevelOff,
		"error":   LevelError,
		"info":    LevelInfo,
		"debug":   LevelDebug,
		"garbage": LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestRequestLogLevelOverrides(t *testing.T) {
	SetDefaultLogLevel("off")
	defer SetDefaultLogLevel("")

	r := httptest.NewRequest("POST", "/api?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override: %d", got)
	}

	r = httptest.NewRequest("POST", "/api?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("legacy query override: %d", got)
	}

	r = httptest.NewRequest("POST", "/api", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override: %d", got)
	}

	r = httptest.NewRequest("POST", "/api", nil)
	if got := requestLogLevel(r); got != LevelOff {
		t.Fatalf("default: %d", got)
	}
}

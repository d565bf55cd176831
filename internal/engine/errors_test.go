package engine

import (
	"errors"
	"testing"
)

func TestErrorClassifiers(t *testing.T) {
	if !IsTooBusy(tooBusyError{}) {
		t.Fatal("IsTooBusy(tooBusyError) = false")
	}
	if IsTooBusy(errors.New("too busy")) {
		t.Fatal("IsTooBusy matched a plain error")
	}
	err := ErrUnavailable("inference server unreachable")
	if !IsUnavailable(err) {
		t.Fatal("IsUnavailable(ErrUnavailable(...)) = false")
	}
	if IsUnavailable(errors.New("unavailable")) {
		t.Fatal("IsUnavailable matched a plain error")
	}
	if err.Error() != "inference server unreachable" {
		t.Fatalf("message = %q", err.Error())
	}
}

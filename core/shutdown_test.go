package core

import (
	"context"
	"errors"
	"testing"
)

func TestShutdownFunc_CanBeAssigned(t *testing.T) {
	var fn ShutdownFunc = func(ctx context.Context) error {
		return nil
	}

	err := fn(context.Background())
	if err != nil {
		t.Errorf("ShutdownFunc returned unexpected error: %v", err)
	}
}

func TestShutdownFunc_PropagatesErrors(t *testing.T) {
	expectedErr := errors.New("shutdown error")
	var fn ShutdownFunc = func(ctx context.Context) error {
		return expectedErr
	}

	err := fn(context.Background())
	if err != expectedErr {
		t.Errorf("ShutdownFunc returned %v, want %v", err, expectedErr)
	}
}

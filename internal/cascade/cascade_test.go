package cascade

import (
	"context"
	"errors"
	"testing"
)

func TestFirstStopsAtFirstSuccess(t *testing.T) {
	calls := 0
	steps := []Step[string]{
		{ID: "a", Run: func(context.Context) (string, error) { calls++; return "", errors.New("down") }},
		{ID: "b", Run: func(context.Context) (string, error) { calls++; return "from-b", nil }},
		{ID: "c", Run: func(context.Context) (string, error) { calls++; return "from-c", nil }},
	}

	got, attempts, err := First(context.Background(), steps...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-b" {
		t.Fatalf("expected from-b, got %q", got)
	}
	if calls != 2 {
		t.Fatalf("expected 2 steps evaluated, got %d", calls)
	}
	if len(attempts) != 2 || attempts[0].Outcome != Failure || attempts[0].Reason != "down" || attempts[1].Outcome != Success {
		t.Fatalf("unexpected attempts: %+v", attempts)
	}
	if Winner(attempts) != "b" {
		t.Fatalf("expected winner b, got %q", Winner(attempts))
	}
}

func TestFirstExhausted(t *testing.T) {
	steps := []Step[int]{
		{ID: "a", Run: func(context.Context) (int, error) { return 0, errors.New("boom") }},
		{ID: "b"},
	}
	_, attempts, err := First(context.Background(), steps...)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if len(attempts) != 2 || attempts[1].Reason != "not configured" {
		t.Fatalf("unexpected attempts: %+v", attempts)
	}
	if Describe(attempts) != "a: boom; b: not configured" {
		t.Fatalf("unexpected description: %q", Describe(attempts))
	}
}

func TestFirstHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, _, err := First(ctx, Step[int]{ID: "a", Run: func(context.Context) (int, error) { called = true; return 1, nil }})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatalf("step should not run after cancellation")
	}
}

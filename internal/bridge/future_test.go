package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFuture_ThenBeforeAndAfterSettle(t *testing.T) {
	f := newFuture()
	got := make(chan string, 2)
	f.Then(func(v string) { got <- "early:" + v }, func(error) { t.Errorf("unexpected error continuation") })
	f.settle("bib", nil)
	f.settle("ignored", errors.New("late"))
	f.Then(func(v string) { got <- "late:" + v }, nil)
	if a, b := <-got, <-got; a != "early:bib" || b != "late:bib" {
		t.Fatalf("continuations = %q, %q", a, b)
	}
	if v, err := f.Result(); v != "bib" || err != nil {
		t.Fatalf("result = %q %v", v, err)
	}
}

func TestFuture_ErrorContinuation(t *testing.T) {
	f := newFuture()
	boom := errors.New("boom")
	var seen error
	f.settle("", boom)
	f.Then(func(string) { t.Fatalf("value continuation must not run") }, func(err error) { seen = err })
	if seen != boom {
		t.Fatalf("error continuation got %v", seen)
	}
}

func TestFuture_WaitTimeout(t *testing.T) {
	f := newFuture()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	select {
	case <-f.Done():
		t.Fatalf("future must stay pending")
	default:
	}
}

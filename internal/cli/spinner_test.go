package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Rendering cards...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	s.Stop()
	s.Stop()
	// Stop cancels the spinner's own context.
	if !s.Cancelled() {
		t.Error("Cancelled() should report true after Stop")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Rendering cards...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinner("Rendering cards...")
	s.Start()
	for i := 1; i <= 5; i++ {
		s.SetMessage("Rendering cards %d/%d...", i, 5)
		time.Sleep(20 * time.Millisecond)
	}
	s.StopWithSuccess("Done")

	if s.message != "Rendering cards 5/5..." {
		t.Errorf("message = %q", s.message)
	}
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Rendering cards...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Export failed")
}

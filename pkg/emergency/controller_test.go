package emergency_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jihwankim/rfc/pkg/emergency"
)

func TestManualStopTriggersCallbacksOnce(t *testing.T) {
	c := emergency.New(emergency.Config{StopFile: filepath.Join(t.TempDir(), "abort")})

	calls := 0
	c.OnStop(func() { calls++ })

	c.Stop("manual")
	c.Stop("manual again")

	if calls != 1 {
		t.Fatalf("callback ran %d times, want 1", calls)
	}
	if !c.IsStopped() {
		t.Fatal("IsStopped() = false after Stop")
	}
	select {
	case <-c.StopChannel():
	default:
		t.Fatal("StopChannel() should be closed after Stop")
	}
}

func TestCreateStopFileTriggersWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abort")
	c := emergency.New(emergency.Config{StopFile: path, PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c.Start(ctx)

	if err := c.CreateStopFile(); err != nil {
		t.Fatalf("CreateStopFile: %v", err)
	}

	select {
	case <-c.StopChannel():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected watcher to detect the stop file within 500ms")
	}
}

func TestRemoveStopFileIsIdempotent(t *testing.T) {
	c := emergency.New(emergency.Config{StopFile: filepath.Join(t.TempDir(), "abort")})
	if err := c.RemoveStopFile(); err != nil {
		t.Fatalf("RemoveStopFile on nonexistent file: %v", err)
	}
	if err := c.CreateStopFile(); err != nil {
		t.Fatalf("CreateStopFile: %v", err)
	}
	if err := c.RemoveStopFile(); err != nil {
		t.Fatalf("RemoveStopFile: %v", err)
	}
}

func TestGetStopFilePathDefaults(t *testing.T) {
	c := emergency.New(emergency.Config{})
	if c.GetStopFilePath() != "/tmp/rfc-batch-abort" {
		t.Fatalf("GetStopFilePath() = %q, want default", c.GetStopFilePath())
	}
}

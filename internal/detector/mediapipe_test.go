package detector

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

// silentService starts a detector whose service swallows every request
// and never answers.
func silentService(t *testing.T, timeout time.Duration) *MediaPipeDetector {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping subprocess test")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}

	script := filepath.Join(t.TempDir(), "silent.sh")
	if err := os.WriteFile(script, []byte("exec cat > /dev/null\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Script = script
	cfg.Python = "/bin/sh"
	cfg.ResponseTimeout = timeout

	d, err := NewMediaPipeDetector(cfg)
	if err != nil {
		t.Fatalf("NewMediaPipeDetector() error = %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func testFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(16, 16, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return &m
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Script = filepath.Join(t.TempDir(), "absent.py")
	if _, err := NewMediaPipeDetector(cfg); err == nil {
		t.Error("expected error for missing script")
	}
}

func TestMediaPipeDetector_ResponseTimeout(t *testing.T) {
	d := silentService(t, 100*time.Millisecond)
	frame := testFrame(t)

	start := time.Now()
	_, err := d.Detect(frame)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Detect() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Detect() took %s", elapsed)
	}
	if d.proc.Load() != nil {
		t.Error("service still registered after timeout")
	}

	// The next request starts a fresh service.
	if _, err := d.Detect(frame); !errors.Is(err, ErrTimeout) {
		t.Errorf("second Detect() error = %v, want ErrTimeout", err)
	}
}

func TestMediaPipeDetector_CloseInterruptsDetect(t *testing.T) {
	d := silentService(t, time.Minute)
	frame := testFrame(t)

	done := make(chan error, 1)
	go func() {
		_, err := d.Detect(frame)
		done <- err
	}()

	deadline := time.Now().Add(3 * time.Second)
	for d.proc.Load() == nil {
		if time.Now().After(deadline) {
			t.Fatal("service never started")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInterrupted) {
			t.Errorf("Detect() error = %v, want ErrInterrupted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Detect() still blocked after Close")
	}
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not return")
	}
}

package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/hand"
)

// ServiceScript is the file name of the Python landmark service.
const ServiceScript = "hand_landmarks.py"

// idleShutdown is how long the service may sit unused before it is stopped.
const idleShutdown = 30 * time.Second

var (
	// ErrServiceNotFound is returned when the landmark service script cannot be located.
	ErrServiceNotFound = errors.New(ServiceScript + " not found")

	// ErrTimeout is returned when the service does not answer within
	// Config.ResponseTimeout.
	ErrTimeout = errors.New("landmark service timed out")

	// ErrInterrupted is returned by a Detect that Close cut short.
	ErrInterrupted = errors.New("landmark service interrupted")
)

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
//
// Each request is a 4-byte big-endian length followed by a JPEG frame on the
// child's stdin; each response is one JSON line on its stdout:
//
//	{"hands":[{"points":[{"x":..,"y":..,"z":..}, ...21],"handedness":"Right","score":0.97}]}
type MediaPipeDetector struct {
	config    Config
	script    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer

	// proc is the running child, readable without mu so that Close and
	// the request watchdog can kill it while Detect holds the lock.
	proc        atomic.Pointer[os.Process]
	expired     atomic.Bool
	interrupted atomic.Bool
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.Script
	if script == "" {
		script = findServiceScript()
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("stat service script: %w", err)
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
	}, nil
}

// Detect encodes the frame, sends it to the service and decodes the hands.
// Hands whose point count is not hand.NumLandmarks are dropped.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]hand.Landmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	line, err := d.roundTrip(buf.GetBytes())
	if err != nil {
		d.kill()
		return nil, err
	}

	hands, err := decodeResponse(line)
	if err != nil {
		return nil, err
	}

	d.resetIdleTimer()
	return hands, nil
}

// roundTrip sends one frame and reads one response line. The child is
// killed if the exchange outlives the response timeout, which unblocks
// the pipe calls.
func (d *MediaPipeDetector) roundTrip(data []byte) ([]byte, error) {
	d.expired.Store(false)
	watchdog := time.AfterFunc(d.responseTimeout(), func() {
		d.expired.Store(true)
		d.signal()
	})
	defer watchdog.Stop()

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	if _, err := d.stdin.Write(length[:]); err != nil {
		return nil, d.exchangeErr("write length", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, d.exchangeErr("write frame", err)
	}

	line, err := d.stdout.ReadBytes('\n')
	if err != nil {
		return nil, d.exchangeErr("read response", err)
	}
	return line, nil
}

func (d *MediaPipeDetector) exchangeErr(op string, err error) error {
	switch {
	case d.interrupted.Load():
		return fmt.Errorf("%s: %w", op, ErrInterrupted)
	case d.expired.Load():
		return fmt.Errorf("%s: %w after %s", op, ErrTimeout, d.responseTimeout())
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (d *MediaPipeDetector) responseTimeout() time.Duration {
	if d.config.ResponseTimeout > 0 {
		return d.config.ResponseTimeout
	}
	return DefaultConfig().ResponseTimeout
}

// signal kills the running child, if any, without taking mu.
func (d *MediaPipeDetector) signal() {
	if p := d.proc.Load(); p != nil {
		p.Kill()
	}
}

// Close shuts down the Python process, interrupting a Detect in flight.
// The detector stays usable; the next Detect starts a new process.
func (d *MediaPipeDetector) Close() error {
	if d.proc.Load() != nil {
		d.interrupted.Store(true)
		d.signal()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) args() []string {
	return []string{
		d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
	}
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	python := d.config.Python
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	cmd := exec.Command(python, d.args()...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}
	log.Printf("Landmark service started (pid %d)", cmd.Process.Pid)

	d.cmd = cmd
	d.proc.Store(cmd.Process)
	d.interrupted.Store(false)
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	return nil
}

// kill tears the child down after a protocol error so the next Detect
// starts from a clean stream.
func (d *MediaPipeDetector) kill() {
	d.signal()
	d.shutdown()
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.proc.Store(nil)
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.shutdown(); err != nil {
			log.Printf("Landmark service exited: %v", err)
		}
	})
}

// jsonHand is the wire form of one hand from the service.
type jsonHand struct {
	Points     []hand.Point3D `json:"points"`
	Handedness string         `json:"handedness"`
	Score      float64        `json:"score"`
}

func decodeResponse(line []byte) ([]hand.Landmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	hands := make([]hand.Landmarks, 0, len(response.Hands))
	for _, jh := range response.Hands {
		h := hand.FromPoints(jh.Points)
		if h == nil {
			continue
		}
		h.Handedness = jh.Handedness
		h.Score = jh.Score
		hands = append(hands, *h)
	}
	return hands, nil
}

func findServiceScript() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	return firstExisting(
		filepath.Join("scripts", ServiceScript),
		filepath.Join("..", "scripts", ServiceScript),
		filepath.Join(execDir, "scripts", ServiceScript),
		filepath.Join(os.Getenv("HOME"), ".mudra", "scripts", ServiceScript),
	)
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	return firstExisting(
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".mudra/venv/bin/python"),
	)
}

func firstExisting(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

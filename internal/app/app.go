// Package app wires the camera, hand detector and gesture debouncer to the
// particle generator and morph engine.
package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/field"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/morph"
	"github.com/ayusman/mudra/internal/server"
)

// CameraRetry is how long the tracking loop waits before reopening a
// camera that failed to open.
const CameraRetry = 5 * time.Second

// DetectorRetry is how long the tracking loop skips detection after the
// detector fails, so a crashing landmark service is not respawned every
// frame.
const DetectorRetry = 2 * time.Second

// Publisher receives the live field after every render step. Publish must
// not retain f after it returns.
type Publisher interface {
	Publish(f *morph.Field)
}

// Config holds configuration options for the application.
type Config struct {
	Tunables config.Tunables

	// Camera defaults to the device described by CameraConfig.
	Camera       capture.Camera
	CameraConfig capture.Config

	// Detector defaults to MediaPipe. If MediaPipe cannot be found the
	// app runs without hand tracking and shows the idle cloud.
	Detector detector.Detector

	// Rasterizer defaults to Tunables.NewRasterizer.
	Rasterizer field.Rasterizer

	// Publisher is optional.
	Publisher Publisher
}

// App is the running pipeline: a tracking loop at camera cadence and a
// render loop at display cadence.
type App struct {
	config    Config
	runID     uuid.UUID
	camera    capture.Camera
	detector  detector.Detector
	debouncer *gesture.Debouncer
	generator *field.Generator

	engineMu sync.Mutex
	engine   *morph.Engine

	mu          sync.RWMutex
	enabled     bool
	cameraOK    bool
	detectorErr error
	message     string
	renderFPS   float64
	onGesture   func(gesture.State)
	onStatus    func(string)
	stopCh      chan struct{}
	resetCh     chan struct{}
	wg          sync.WaitGroup
}

// Status messages.
const (
	StatusStarting = "Starting"
	StatusTracking = "Tracking"
	StatusPaused   = "Paused"
)

// New creates an App from config. Nothing is opened until Start.
func New(config Config) (*App, error) {
	if err := config.Tunables.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		config:    config,
		runID:     uuid.New(),
		camera:    config.Camera,
		detector:  config.Detector,
		debouncer: gesture.NewDebouncer(config.Tunables.Window, config.Tunables.Majority),
		enabled:   true,
		message:   StatusStarting,
		resetCh:   make(chan struct{}, 1),
	}

	if a.camera == nil {
		cc := config.CameraConfig
		cc.FPS = config.Tunables.TrackFPS
		a.camera = capture.NewCamera(cc)
	}

	if a.detector == nil {
		dc := detector.DefaultConfig()
		if mp, err := detector.NewMediaPipeDetector(dc); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), hand tracking disabled", err)
			a.detectorErr = err
			a.message = detectorMessage(err)
		}
	}

	r := config.Rasterizer
	if r == nil {
		var err error
		if r, err = config.Tunables.NewRasterizer(); err != nil {
			log.Printf("Rasterizer %q unavailable, gestures will show the cloud: %v", config.Tunables.Rasterizer, err)
			r = nil
		}
	}

	a.generator = field.NewGenerator(config.Tunables.Field(), r)
	a.engine = morph.NewEngine(config.Tunables.Morph(), a.generator.TargetFor(gesture.Reset))
	return a, nil
}

// OnGesture sets the callback run on the tracking goroutine whenever the
// stable gesture changes.
func (a *App) OnGesture(fn func(gesture.State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onGesture = fn
}

// OnStatus sets the callback run whenever the status message changes.
func (a *App) OnStatus(fn func(string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStatus = fn
}

// SetEnabled enables or disables hand tracking. While disabled the camera
// is closed and the stable gesture is Reset.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	if a.enabled == enabled {
		a.mu.Unlock()
		return
	}
	a.enabled = enabled
	running := a.stopCh != nil
	a.mu.Unlock()

	if enabled {
		log.Println("Hand tracking enabled")
	} else {
		log.Println("Hand tracking disabled")
	}

	if !running {
		if !enabled {
			a.debouncer.Reset()
		}
		return
	}
	// The tracking loop owns the debouncer and the camera.
	select {
	case a.resetCh <- struct{}{}:
	default:
	}
}

// IsEnabled reports whether hand tracking is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Start launches the tracking and render loops. Camera and detector
// failures do not stop the app; they show up in Status.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	a.stopCh = make(chan struct{})
	stop := a.stopCh

	a.wg.Add(3)
	go func() {
		defer a.wg.Done()
		a.generator.Warm()
	}()
	go func() {
		defer a.wg.Done()
		a.runTracking(stop)
	}()
	go func() {
		defer a.wg.Done()
		a.runRender(stop)
	}()

	log.Printf("Pipeline %s started", a.runID)
	return nil
}

// Stop halts both loops and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stop := a.stopCh
	a.stopCh = nil
	a.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	// Closing the detector first releases a Detect blocked on the service.
	if a.detector != nil {
		a.detector.Close()
	}
	a.wg.Wait()

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	// The tracking loop may have restarted the service before it saw stop.
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Printf("Pipeline %s stopped", a.runID)
}

// State returns the stable gesture state.
func (a *App) State() gesture.State {
	return a.debouncer.Current()
}

// Generator returns the target generator.
func (a *App) Generator() *field.Generator {
	return a.generator
}

// Snapshot copies the live field into dst. Safe to call while running.
func (a *App) Snapshot(dst *morph.Field) *morph.Field {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return a.engine.Snapshot(dst)
}

// Status reports the pipeline status for the tray and HTTP surface.
func (a *App) Status() server.Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return server.Status{
		RunID:      a.runID.String(),
		Enabled:    a.enabled,
		CameraOK:   a.cameraOK,
		DetectorOK: a.detectorErr == nil,
		Message:    a.message,
		Particles:  a.generator.Particles(),
		RenderFPS:  a.renderFPS,
	}
}

// setStatus updates camera health and the message, notifying on change.
func (a *App) setStatus(cameraOK bool, message string) {
	a.mu.Lock()
	changed := a.message != message
	a.cameraOK = cameraOK
	a.message = message
	fn := a.onStatus
	a.mu.Unlock()

	if changed {
		log.Printf("Status: %s", message)
		if fn != nil {
			fn(message)
		}
	}
}

func detectorMessage(err error) string {
	return fmt.Sprintf("Hand tracking unavailable: %v", err)
}

func cameraMessage(err error) string {
	return fmt.Sprintf("Camera unavailable: %v", err)
}

func (a *App) setRenderFPS(fps float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.renderFPS = fps
}

func (a *App) gestureCallback() func(gesture.State) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.onGesture
}

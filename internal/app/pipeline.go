package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/morph"
)

// fpsWindow is how often the measured render rate is refreshed.
const fpsWindow = time.Second

// runTracking is the only writer of the debouncer. Every tick it reads one
// frame, detects hands, classifies the first one and feeds the result to
// the debouncer. Any failure along the way counts as "no hand".
func (a *App) runTracking(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(a.config.Tunables.TrackFPS))
	defer ticker.Stop()

	th := a.config.Tunables.Thresholds()
	var nextOpen, nextDetect time.Time

	if a.detector == nil {
		a.mu.RLock()
		err := a.detectorErr
		a.mu.RUnlock()
		a.setStatus(false, detectorMessage(err))
	}

	for {
		select {
		case <-stop:
			return

		case <-a.resetCh:
			if a.IsEnabled() {
				nextOpen, nextDetect = time.Time{}, time.Time{}
				continue
			}
			if err := a.camera.Close(); err != nil {
				log.Printf("Error closing camera: %v", err)
			}
			a.debouncer.Reset()
			a.notify(a.debouncer.Current())
			a.setStatus(false, StatusPaused)

		case <-ticker.C:
			if !a.IsEnabled() || a.detector == nil {
				continue
			}

			if !a.camera.IsOpen() {
				if time.Now().Before(nextOpen) {
					continue
				}
				if err := a.camera.Open(); err != nil {
					nextOpen = time.Now().Add(CameraRetry)
					a.setStatus(false, cameraMessage(err))
					a.observe(nil, th)
					continue
				}
				log.Println("Camera opened")
			}

			if time.Now().Before(nextDetect) {
				a.observe(nil, th)
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.setStatus(false, cameraMessage(err))
				a.observe(nil, th)
				continue
			}

			hands, err := a.detector.Detect(frame)
			frame.Close()
			if err != nil {
				nextDetect = time.Now().Add(DetectorRetry)
				a.setStatus(true, detectorMessage(err))
				a.observe(nil, th)
				continue
			}

			a.setStatus(true, StatusTracking)
			a.observe(detector.First(hands), th)
		}
	}
}

// observe classifies one frame and publishes any stable change.
func (a *App) observe(h *hand.Landmarks, th gesture.Thresholds) {
	raw := gesture.Classify(h, th)
	state, changed := a.debouncer.Update(raw, h != nil)
	if !changed {
		return
	}
	log.Printf("Gesture: %s", state.Gesture)
	a.notify(state)
}

func (a *App) notify(state gesture.State) {
	if fn := a.gestureCallback(); fn != nil {
		fn(state)
	}
}

// runRender steps the morph engine toward the target of the stable gesture
// at render cadence and publishes the result. It never waits on tracking.
func (a *App) runRender(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(a.config.Tunables.RenderFPS))
	defer ticker.Stop()

	start := time.Now()
	windowStart, frames := start, 0

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			a.renderStep(now.Sub(start).Seconds())

			frames++
			if d := now.Sub(windowStart); d >= fpsWindow {
				a.setRenderFPS(float64(frames) / d.Seconds())
				windowStart, frames = now, 0
			}
		}
	}
}

// renderStep advances the field once and hands it to the publisher.
func (a *App) renderStep(elapsed float64) {
	g := a.debouncer.Current().Gesture
	target := a.generator.TargetFor(g)

	a.engineMu.Lock()
	defer a.engineMu.Unlock()

	a.engine.Step(target, g, elapsed)
	if a.config.Publisher != nil {
		a.config.Publisher.Publish(a.engine.Field())
	}
}

// Field returns a copy of the live field.
func (a *App) Field() *morph.Field {
	return a.Snapshot(nil)
}

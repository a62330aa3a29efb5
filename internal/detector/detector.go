// Package detector finds hands in camera frames.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/hand"
)

// Detector defines the interface for hand landmark detection.
type Detector interface {
	// Detect analyzes a video frame and returns detected hands, best first.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]hand.Landmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands the model reports. Only the
	// first one drives gestures, so anything above 1 is wasted work.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Script overrides the path of the landmark service script.
	Script string

	// Python overrides the interpreter that runs Script.
	Python string

	// ResponseTimeout bounds one request to the service. A request that
	// runs over kills the service; the next Detect starts a fresh one.
	ResponseTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		ResponseTimeout: 5 * time.Second,
	}
}

// First returns the first hand of a detection result, or nil.
func First(hands []hand.Landmarks) *hand.Landmarks {
	if len(hands) == 0 {
		return nil
	}
	return &hands[0]
}

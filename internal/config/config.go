// Package config defines service configuration structures and loading hooks.
//
// Keys are flat so that every field maps onto one VOLLEY_<KEY> environment
// variable. Defaults live in the struct tags and are applied by New.
package config

import (
	"fmt"
	"runtime"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" default:"info" validate:"oneof=debug info warn error"`

	// LogFormat selects the handler: json or text.
	LogFormat string `koanf:"log_format" default:"json" validate:"oneof=json text"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" default:":9080" validate:"required"`

	// QueueSize bounds the asynchronous job queue.
	QueueSize int `koanf:"queue_size" default:"1024" validate:"gt=0"`

	// WorkerCount sets the number of analysis workers; 0 means NumCPU.
	WorkerCount int `koanf:"worker_count" validate:"gte=0"`

	// DedupeSize sets the size of the submitted session id cache.
	DedupeSize int `koanf:"dedupe_size" default:"100000" validate:"gt=0"`

	// MaxSessions caps the session records kept for polling.
	MaxSessions int `koanf:"max_sessions" default:"10000" validate:"gt=0"`

	// JobTimeoutSec bounds one asynchronous analysis.
	JobTimeoutSec float64 `koanf:"job_timeout_sec" default:"120" validate:"gt=0"`

	// MaxFrames rejects sessions with more frames at the HTTP boundary.
	MaxFrames int `koanf:"max_frames" default:"54000" validate:"gt=0"`

	// MaxBodyBytes limits request body size.
	MaxBodyBytes int64 `koanf:"max_body_bytes" default:"67108864" validate:"gt=0"`

	Engine `koanf:",squash"`
}

// Engine holds the analysis thresholds. Speeds are normalized image units
// per second.
type Engine struct {
	// DominantSide is the player's racket arm: right or left.
	DominantSide string `koanf:"dominant_side" default:"right" validate:"oneof=right left"`

	// MinVisibility is the landmark visibility needed to count it.
	MinVisibility float64 `koanf:"min_visibility" default:"0.5" validate:"gte=0,lte=1"`

	// MinLandmarks is how many of the 8 required landmarks must be visible.
	MinLandmarks int `koanf:"min_landmarks" default:"6" validate:"gte=1,lte=8"`

	// MotionPoint selects the tracked point: wrist_midpoint, centroid, dominant_wrist.
	MotionPoint string `koanf:"motion_point" default:"wrist_midpoint" validate:"oneof=wrist_midpoint centroid dominant_wrist"`

	// SmoothingWindow is the moving-average width; below 2 disables it.
	SmoothingWindow int `koanf:"smoothing_window" default:"5" validate:"gte=0,lte=31"`

	// MinPeakSpeed is the speed a peak must exceed to start a candidate.
	MinPeakSpeed float64 `koanf:"min_peak_speed" default:"0.5" validate:"gt=0"`

	// BoundaryRatio is the fraction of the peak speed that ends a candidate.
	BoundaryRatio float64 `koanf:"boundary_ratio" default:"0.3" validate:"gt=0,lt=1"`

	// ClassifierPolicy is geometry, velocity or cascade.
	ClassifierPolicy string `koanf:"classifier_policy" default:"geometry" validate:"oneof=geometry velocity cascade"`

	// ConfidenceFloor turns a classification below it into unknown.
	ConfidenceFloor float64 `koanf:"confidence_floor" default:"0.3" validate:"gte=0,lte=1"`

	// MinEventDuration and MaxEventDuration bound timeline events in seconds.
	MinEventDuration float64 `koanf:"min_event_duration" default:"0.1" validate:"gte=0"`
	MaxEventDuration float64 `koanf:"max_event_duration" default:"3.0" validate:"gtefield=MinEventDuration"`

	// RallyGapSec closes a rally when exceeded between consecutive strokes.
	RallyGapSec float64 `koanf:"rally_gap_sec" default:"3.0" validate:"gt=0"`

	// Pressure weights for length, error rate and difficulty.
	PressureLengthWeight     float64 `koanf:"pressure_length_weight" default:"0.3" validate:"gte=0"`
	PressureErrorWeight      float64 `koanf:"pressure_error_weight" default:"0.4" validate:"gte=0"`
	PressureDifficultyWeight float64 `koanf:"pressure_difficulty_weight" default:"0.3" validate:"gte=0"`

	// HighPressure is the rally pressure above which a rally counts as high pressure.
	HighPressure float64 `koanf:"high_pressure" default:"0.7" validate:"gte=0,lte=1"`

	// HeatmapSize is the position heatmap grid dimension.
	HeatmapSize int `koanf:"heatmap_size" default:"20" validate:"gte=2,lte=200"`
}

var validate = validator.New() //nolint:gochecknoglobals // validator caches struct metadata

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		// tags are static; a failure here is a programming error
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	if c.WorkerCount == 0 {
		c.WorkerCount = runtime.NumCPU()
	}
	return c
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

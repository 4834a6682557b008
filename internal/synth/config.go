package synth

import "time"

// Output modes.
const (
	ModeStdout  = "stdout"
	ModeSubmit  = "submit"
	ModeAnalyze = "analyze"
)

// Config holds configuration for a synth run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Mode       string        // stdout, submit or analyze
	Sessions   int           // Number of sessions to generate
	Rallies    int           // Rallies per session
	FPS        float64       // Frame rate of generated sessions
	Noise      float64       // Positional jitter std dev
	Seed       uint64        // Base seed; session i uses Seed+i
	LeftHanded bool          // Mirror the player
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	PollEvery  time.Duration // Status polling interval in submit mode
	OutputFile string        // Output file for generated sessions
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	SessionsGenerated int
	SessionsSubmitted int
	SessionsAccepted  int
	SessionsDuplicate int
	SessionsFailed    int
	SessionsCompleted int
	StrokesExpected   int
	StrokesDetected   int
	StrokesMatched    int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// job is one generated session with the strokes it was scripted with.
type job struct {
	id     string
	script []Stroke
}

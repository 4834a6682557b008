package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/volley/internal/synth"
)

// Default configuration constants.
const (
	defaultSessions   = 10
	defaultRallies    = 5
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultPoll       = 200 * time.Millisecond
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		mode       = flag.String("mode", synth.ModeStdout, "stdout, submit or analyze")
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		sessions   = flag.Int("sessions", defaultSessions, "Number of sessions to generate")
		rallies    = flag.Int("rallies", defaultRallies, "Rallies per session")
		fps        = flag.Float64("fps", synth.DefaultFPS, "Frame rate of generated sessions")
		noise      = flag.Float64("noise", 0, "Positional jitter std dev")
		seed       = flag.Uint64("seed", 1, "Base random seed")
		left       = flag.Bool("left", false, "Generate a left-handed player")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		poll       = flag.Duration("poll", defaultPoll, "Status polling interval in submit mode")
		outputFile = flag.String("output", "", "Output file for generated sessions (default: stdout)")
		logFile    = flag.String("log", "", "Log file for run output (default: synth_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synth.ShowHelp()
		return
	}

	if err := synth.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := &synth.Config{
		BaseURL:    *baseURL,
		Mode:       *mode,
		Sessions:   *sessions,
		Rallies:    *rallies,
		FPS:        *fps,
		Noise:      *noise,
		Seed:       *seed,
		LeftHanded: *left,
		Workers:    *workers,
		Timeout:    *timeout,
		PollEvery:  *poll,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if _, err := synth.Run(ctx, config, os.Stdout); err != nil {
		os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

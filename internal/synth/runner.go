package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/types"
	"github.com/okian/volley/pkg/logger"
)

// File and run constants.
const (
	directoryPermission     = 0750
	workerChannelMultiplier = 2
	percentageMultiplier    = 100
)

// Run executes a synth run. In stdout mode sessions are written as a JSON
// array to w (or the output file); otherwise they are sent to the service
// and the returned timelines are checked against the scripts.
func Run(ctx context.Context, cfg *Config, w io.Writer) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("synth")

	log.Info(ctx, "starting synth run",
		logger.String("mode", cfg.Mode),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("rallies", cfg.Rallies),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	jobs := plan(cfg)
	stats.SessionsGenerated = len(jobs)
	for _, j := range jobs {
		stats.StrokesExpected += len(j.script)
	}

	var err error
	switch cfg.Mode {
	case ModeStdout, "":
		err = writeSessions(ctx, cfg, jobs, w)
	case ModeSubmit, ModeAnalyze:
		client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)
		if err = client.Health(ctx); err != nil {
			return stats, fmt.Errorf("service health check failed: %w", err)
		}
		err = send(ctx, cfg, client, jobs, stats)
	default:
		err = fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	if err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// plan assigns ids and scripts to the sessions of a run.
func plan(cfg *Config) []job {
	jobs := make([]job, cfg.Sessions)
	for i := range jobs {
		jobs[i] = job{
			id:     uuid.New().String(),
			script: MatchScript(cfg.Rallies, cfg.Seed+uint64(i)),
		}
	}
	return jobs
}

func (c *Config) generatorOptions(i int) Options {
	return Options{
		FPS:        c.FPS,
		Noise:      c.Noise,
		Seed:       c.Seed + uint64(i),
		LeftHanded: c.LeftHanded,
	}
}

func writeSessions(ctx context.Context, cfg *Config, jobs []job, w io.Writer) error {
	if cfg.OutputFile != "" {
		if dir := filepath.Dir(cfg.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, directoryPermission); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		}
		file, err := os.Create(cfg.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer func() {
			if err := file.Close(); err != nil {
				logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
			}
		}()
		w = file
	}

	reqs := make([]types.SessionRequest, 0, len(jobs))
	for i, j := range jobs {
		s, err := Generate(j.id, cfg.generatorOptions(i), j.script)
		if err != nil {
			return fmt.Errorf("failed to generate session %d: %w", i, err)
		}
		reqs = append(reqs, types.FromSession(s))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reqs); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	logger.Get().Info(ctx, "sessions written", logger.Int("count", len(reqs)), logger.String("file", cfg.OutputFile))
	return nil
}

// send analyses sessions through the service with a worker pool.
func send(ctx context.Context, cfg *Config, client *HTTPClient, jobs []job, stats *Stats) error {
	log := logger.Get().Named("synth")
	workers := max(1, cfg.Workers)

	var submitted, accepted, duplicate, failed, completed, detected, matched int64

	ch := make(chan int, workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				if ctx.Err() != nil {
					return
				}
				j := jobs[i]
				s, err := Generate(j.id, cfg.generatorOptions(i), j.script)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&submitted, 1)

				res, dup, err := deliver(ctx, cfg, client, types.FromSession(s))
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "session failed", logger.String("session_id", j.id), logger.Error(err))
					}
					continue
				}
				if dup {
					atomic.AddInt64(&duplicate, 1)
				} else {
					atomic.AddInt64(&accepted, 1)
				}
				atomic.AddInt64(&completed, 1)
				atomic.AddInt64(&detected, int64(len(res.Timeline)))
				atomic.AddInt64(&matched, int64(Matched(Expected(j.script), res.Timeline)))
			}
		}()
	}

	go func() {
		defer close(ch)
		for i := range jobs {
			select {
			case <-ctx.Done():
				return
			case ch <- i:
			}
		}
	}()
	wg.Wait()

	stats.SessionsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.SessionsAccepted = int(atomic.LoadInt64(&accepted))
	stats.SessionsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.SessionsFailed = int(atomic.LoadInt64(&failed))
	stats.SessionsCompleted = int(atomic.LoadInt64(&completed))
	stats.StrokesDetected = int(atomic.LoadInt64(&detected))
	stats.StrokesMatched = int(atomic.LoadInt64(&matched))
	return ctx.Err()
}

func deliver(ctx context.Context, cfg *Config, client *HTTPClient, req types.SessionRequest) (*types.AnalysisResponse, bool, error) {
	if cfg.Mode == ModeAnalyze {
		res, err := client.Analyze(ctx, req)
		return res, false, err
	}
	ack, err := client.Submit(ctx, req)
	if err != nil {
		return nil, false, err
	}
	st, err := client.Await(ctx, req.SessionID, cfg.PollEvery)
	if err != nil {
		return nil, ack.Duplicate, err
	}
	if model.Status(st.Status) == model.StatusFailed || st.Result == nil {
		return nil, ack.Duplicate, fmt.Errorf("session %s failed: %s", req.SessionID, st.Error)
	}
	return st.Result, ack.Duplicate, nil
}

// Matched counts timeline entries whose label matches the script position by
// position.
func Matched(want []model.StrokeType, got []types.TimelineEntry) int {
	n := 0
	for i := 0; i < len(want) && i < len(got); i++ {
		if string(want[i]) == got[i].Stroke {
			n++
		}
	}
	return n
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var accuracy, sessionsPerSecond float64
	if stats.StrokesExpected > 0 {
		accuracy = float64(stats.StrokesMatched) / float64(stats.StrokesExpected) * percentageMultiplier
	}
	if stats.Duration > 0 {
		sessionsPerSecond = float64(stats.SessionsSubmitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("sessionsGenerated", stats.SessionsGenerated),
		logger.Int("sessionsSubmitted", stats.SessionsSubmitted),
		logger.Int("sessionsAccepted", stats.SessionsAccepted),
		logger.Int("sessionsDuplicate", stats.SessionsDuplicate),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("sessionsCompleted", stats.SessionsCompleted),
		logger.Int("strokesExpected", stats.StrokesExpected),
		logger.Int("strokesDetected", stats.StrokesDetected),
		logger.Float64("accuracy", accuracy),
		logger.Duration("duration", stats.Duration),
		logger.Float64("sessionsPerSecond", sessionsPerSecond))
}

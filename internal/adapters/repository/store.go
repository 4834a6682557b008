// Package repository stores asynchronously analysed sessions and their
// lifecycle status.
package repository

import (
	"context"
	"time"

	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/pipeline"
)

// Record is the stored state of one submitted session.
type Record struct {
	SessionID   string
	Status      model.Status
	SubmittedAt time.Time
	UpdatedAt   time.Time
	Result      *pipeline.Result
	Error       string
}

// Store provides read/write access to session records.
type Store interface {
	// Create registers a pending session. Returns ErrExists for a known id.
	Create(ctx context.Context, sessionID string, submittedAt time.Time) error

	// MarkProcessing moves a pending session to processing.
	MarkProcessing(ctx context.Context, sessionID string) error
	// Complete stores the analysis result of a processing session.
	Complete(ctx context.Context, sessionID string, res *pipeline.Result) error
	// Fail records why a processing session could not be analysed.
	Fail(ctx context.Context, sessionID string, cause error) error

	// Get returns the record for a session or ErrNotFound.
	Get(ctx context.Context, sessionID string) (Record, error)
	// List returns up to limit records, newest first. Zero means no limit.
	List(ctx context.Context, limit int) ([]Record, error)
	// Delete removes a record. Sessions being processed cannot be deleted.
	Delete(ctx context.Context, sessionID string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) int
	// CountByStatus returns the number of records in each status.
	CountByStatus(ctx context.Context) map[model.Status]int
}

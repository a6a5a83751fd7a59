package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lendit/internal/domain"
	"lendit/internal/export"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when the report queue cannot accept more
// tasks; the caller decides whether to retry later.
var ErrQueueFull = errors.New("report queue is full")

// ReportWorker drains report tasks in the background and writes xlsx
// workbooks into the export directory, retrying with backoff.
type ReportWorker struct {
	bookings domain.BookingRepository
	dir      string
	tasks    chan struct{}
	policy   RetryPolicy
	logger   *zerolog.Logger
}

func NewReportWorker(bookings domain.BookingRepository, dir string, queueSize int, policy RetryPolicy, logger *zerolog.Logger) *ReportWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &ReportWorker{
		bookings: bookings,
		dir:      dir,
		tasks:    make(chan struct{}, queueSize),
		policy:   policy,
		logger:   logger,
	}
}

// EnqueueBookingsReport schedules a full bookings report. Non-blocking.
func (w *ReportWorker) EnqueueBookingsReport(ctx context.Context) error {
	select {
	case w.tasks <- struct{}{}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start runs the drain loop until the context is cancelled.
func (w *ReportWorker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.tasks:
				w.runWithRetry(ctx)
			}
		}
	}()
}

func (w *ReportWorker) runWithRetry(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		path, err := w.writeReport(ctx)
		if err == nil {
			w.logger.Info().Str("path", path).Msg("bookings report written")
			return
		}

		if attempt > w.policy.MaxRetries {
			w.logger.Error().Err(err).Int("attempts", attempt).Msg("bookings report failed, giving up")
			return
		}

		delay := w.policy.NextDelay(attempt)
		w.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("bookings report failed, retrying")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (w *ReportWorker) writeReport(ctx context.Context) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	bookings, err := w.bookings.ListAllBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("load bookings: %w", err)
	}

	name := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)
	if err := export.WriteBookingsReport(path, bookings); err != nil {
		return "", err
	}
	return path, nil
}

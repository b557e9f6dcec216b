package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ASP-NET-2/ReviewProvider/internal/repository"
	"github.com/ASP-NET-2/ReviewProvider/pkg/database"
	apperrors "github.com/ASP-NET-2/ReviewProvider/pkg/errors"
)

// changesetAttempts is the number of times a changeset is executed before
// giving up on serialization conflicts.
const changesetAttempts = 3

// Store implements repository.Store using PostgreSQL. Changesets run in
// serializable transactions so the summary recompute always sees a consistent
// set of feedback rows.
type Store struct {
	pool   database.TxBeginner
	logger *slog.Logger
}

// NewStore creates a new PostgreSQL-backed feedback store.
func NewStore(pool database.TxBeginner, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// Summaries returns a summary repository reading outside any transaction.
func (s *Store) Summaries() repository.SummaryRepository {
	return NewSummaryRepository(s.pool)
}

// Feedback returns a feedback repository reading outside any transaction.
func (s *Store) Feedback() repository.UserFeedbackRepository {
	return NewUserFeedbackRepository(s.pool)
}

// RunChangeset executes fn inside a serializable transaction and retries the
// whole function on serialization failures. Because fn re-reads everything it
// needs on each attempt, retried get-or-create sequences simply find the rows
// a concurrent transaction inserted.
func (s *Store) RunChangeset(ctx context.Context, fn func(ctx context.Context, cs *repository.Changeset) error) error {
	var lastErr error

	for attempt := 1; attempt <= changesetAttempts; attempt++ {
		err := s.runChangesetOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) {
			return err
		}

		lastErr = err
		s.logger.WarnContext(ctx, "changeset hit a concurrent update, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", changesetAttempts),
			slog.String("error", err.Error()),
		)
	}

	s.logger.ErrorContext(ctx, "changeset retries exhausted",
		slog.String("error", lastErr.Error()),
	)
	return apperrors.Conflict("feedback was modified concurrently, please retry")
}

func (s *Store) runChangesetOnce(ctx context.Context, fn func(ctx context.Context, cs *repository.Changeset) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin changeset tx: %w", err)
	}

	cs := &repository.Changeset{
		Summaries: NewSummaryRepository(tx),
		Feedback:  NewUserFeedbackRepository(tx),
		Ratings:   NewRatingRepository(tx),
		Reviews:   NewReviewRepository(tx),
	}

	if err := fn(ctx, cs); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit changeset tx: %w", err)
	}

	return nil
}

// isRetryableTxError reports whether the transaction failed in a way a fresh
// attempt can resolve: a serialization failure (SQLSTATE 40001), a deadlock
// (40P01), or a duplicate insert from a racing get-or-create (the retry will
// find the row the other transaction created).
func isRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") || strings.Contains(msg, "40P01")
}

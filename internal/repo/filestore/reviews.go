package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/geocoder89/reviewhub/internal/domain/review"
)

// ReadReviews returns the stored reviews in insertion order. A missing file
// is created empty. An unreadable file is copied to
// reviews.json.corrupt.<unix-ms> and reset to empty; that case is logged but
// not returned as an error.
func (s *Store) ReadReviews(ctx context.Context) ([]review.Review, error) {
	s.reviewsMu.Lock()
	defer s.reviewsMu.Unlock()

	return s.readReviews(ctx)
}

// WriteReviews atomically replaces reviews.json with the given collection.
func (s *Store) WriteReviews(ctx context.Context, reviews []review.Review) error {
	s.reviewsMu.Lock()
	defer s.reviewsMu.Unlock()

	return s.writeReviews(ctx, reviews)
}

// WithReviews runs fn between a read and a write of reviews.json while holding
// the store lock. The slice returned by fn is persisted; an error from fn
// aborts without writing and is returned unchanged.
func (s *Store) WithReviews(ctx context.Context, fn func([]review.Review) ([]review.Review, error)) error {
	s.reviewsMu.Lock()
	defer s.reviewsMu.Unlock()

	current, err := s.readReviews(ctx)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	return s.writeReviews(ctx, next)
}

func (s *Store) readReviews(ctx context.Context) ([]review.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reviews []review.Review

	err := s.observe(ctx, "reviews.read", func() error {
		raw, err := os.ReadFile(s.ReviewsPath())
		if err != nil {
			return err
		}

		if err := json.Unmarshal(raw, &reviews); err != nil {
			return fmt.Errorf("decode %s: %w", reviewsFile, err)
		}
		return nil
	})

	switch {
	case err == nil:
		if reviews == nil {
			reviews = []review.Review{}
		}
		return reviews, nil

	case errors.Is(err, fs.ErrNotExist):
		empty := []review.Review{}
		if err := s.writeReviews(ctx, empty); err != nil {
			return nil, err
		}
		return empty, nil

	default:
		return s.resetCorrupt(ctx, err)
	}
}

func (s *Store) resetCorrupt(ctx context.Context, cause error) ([]review.Review, error) {
	path := s.ReviewsPath()
	backup := fmt.Sprintf("%s.corrupt.%d", path, s.now().UnixMilli())

	if err := copyFile(path, backup); err != nil {
		s.log.WarnContext(ctx, "could not back up corrupt reviews document", "path", path, "backup", backup, "err", err)
		backup = ""
	}

	// degraded mode: stored reviews are discarded, only the backup remains
	s.log.ErrorContext(ctx, "reviews document corrupt, reset to empty", "path", path, "backup", backup, "err", cause)

	if s.prom != nil {
		s.prom.RecordRecovery(reviewsFile)
	}

	empty := []review.Review{}
	if err := s.writeReviews(ctx, empty); err != nil {
		return nil, err
	}

	return empty, nil
}

func (s *Store) writeReviews(ctx context.Context, reviews []review.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if reviews == nil {
		reviews = []review.Review{}
	}

	return s.observe(ctx, "reviews.write", func() error {
		return writeJSONAtomic(s.ReviewsPath(), reviews)
	})
}

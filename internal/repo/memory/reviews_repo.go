package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/reviewhub/internal/domain/review"
)

// ReviewsRepo keeps the reviews collection in process memory. It satisfies
// the same read / read-modify-write contract as the file store.
type ReviewsRepo struct {
	mu    sync.Mutex
	items []review.Review
}

func NewReviewsRepo(seed ...review.Review) *ReviewsRepo {
	return &ReviewsRepo{
		items: append([]review.Review{}, seed...),
	}
}

func (r *ReviewsRepo) ReadReviews(ctx context.Context) ([]review.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return clone(r.items), nil
}

func (r *ReviewsRepo) WithReviews(ctx context.Context, fn func([]review.Review) ([]review.Review, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(clone(r.items))
	if err != nil {
		return err
	}

	r.items = clone(next)

	return nil
}

func clone(in []review.Review) []review.Review {
	out := make([]review.Review, len(in))
	for i, rv := range in {
		rv.Tags = append([]string{}, rv.Tags...)
		out[i] = rv
	}
	return out
}

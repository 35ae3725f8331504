package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/geocoder89/reviewhub/internal/domain/review"
	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/geocoder89/reviewhub/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReviewStore is the persistence contract the service needs. WithReviews
// must hold the collection exclusively for the duration of fn.
type ReviewStore interface {
	ReadReviews(ctx context.Context) ([]review.Review, error)
	WithReviews(ctx context.Context, fn func([]review.Review) ([]review.Review, error)) error
}

type Reviews struct {
	store ReviewStore
	log   *slog.Logger
	prom  *observability.Prom
	now   func() time.Time
}

func NewReviews(store ReviewStore, log *slog.Logger, prom *observability.Prom) *Reviews {
	if log == nil {
		log = slog.Default()
	}

	return &Reviews{
		store: store,
		log:   log,
		prom:  prom,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Reviews) Create(ctx context.Context, caller user.Identity, req review.CreateReviewRequest) (review.Review, error) {
	ctx, span := observability.StartSpan(ctx, "reviews.create", attribute.String("user.id", caller.UserID))

	if err := review.ValidateCreate(req); err != nil {
		s.finish(span, "create", err)
		return review.Review{}, err
	}

	var created review.Review

	err := s.store.WithReviews(ctx, func(all []review.Review) ([]review.Review, error) {
		for _, r := range all {
			if r.SameBook(caller.UserID, req.BookTitle, req.Author) {
				return nil, review.ErrDuplicate
			}
		}

		created = review.NewFromCreateRequest(req, caller, s.now())

		return append(all, created), nil
	})

	if err == nil {
		span.SetAttributes(attribute.String("review.id", created.ID))
	}
	s.finish(span, "create", err)
	if err != nil {
		return review.Review{}, err
	}

	s.log.InfoContext(ctx, "review_created", "review_id", created.ID, "user_id", caller.UserID)

	return created, nil
}

// List is public. Filters are ANDed, sorting happens after filtering and
// without a sort the storage order is kept.
func (s *Reviews) List(ctx context.Context, filter review.ListFilter) ([]review.Review, error) {
	order, err := parseSort(filter.Sort)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ReadReviews(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]review.Review, 0, len(all))
	for _, r := range all {
		if matches(r, filter) {
			out = append(out, r)
		}
	}

	order.apply(out)

	return out, nil
}

func (s *Reviews) Get(ctx context.Context, id string) (review.Review, error) {
	all, err := s.store.ReadReviews(ctx)
	if err != nil {
		return review.Review{}, err
	}

	i := indexOf(all, id)
	if i < 0 {
		return review.Review{}, review.ErrNotFound
	}

	return all[i], nil
}

// Update is owner-only; unlike Delete, admins get no override.
func (s *Reviews) Update(ctx context.Context, caller user.Identity, id string, req review.UpdateReviewRequest) (review.Review, error) {
	ctx, span := observability.StartSpan(ctx, "reviews.update",
		attribute.String("user.id", caller.UserID),
		attribute.String("review.id", id),
	)

	if err := review.ValidateUpdate(req); err != nil {
		s.finish(span, "update", err)
		return review.Review{}, err
	}

	var updated review.Review

	err := s.store.WithReviews(ctx, func(all []review.Review) ([]review.Review, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, review.ErrNotFound
		}

		if all[i].UserID != caller.UserID {
			return nil, review.ErrForbidden
		}

		updated = all[i].Apply(req, s.now())
		all[i] = updated

		return all, nil
	})

	s.finish(span, "update", err)
	if err != nil {
		return review.Review{}, err
	}

	s.log.InfoContext(ctx, "review_updated", "review_id", id, "user_id", caller.UserID)

	return updated, nil
}

// Delete is allowed for the owner and for any admin.
func (s *Reviews) Delete(ctx context.Context, caller user.Identity, id string) error {
	ctx, span := observability.StartSpan(ctx, "reviews.delete",
		attribute.String("user.id", caller.UserID),
		attribute.String("review.id", id),
	)

	err := s.store.WithReviews(ctx, func(all []review.Review) ([]review.Review, error) {
		i := indexOf(all, id)
		if i < 0 {
			return nil, review.ErrNotFound
		}

		if all[i].UserID != caller.UserID && !caller.IsAdmin() {
			return nil, review.ErrForbidden
		}

		return slices.Delete(all, i, i+1), nil
	})

	s.finish(span, "delete", err)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "review_deleted", "review_id", id, "user_id", caller.UserID, "role", caller.Role)

	return nil
}

// finish ends the mutation span and counts the outcome.
func (s *Reviews) finish(span trace.Span, op string, err error) {
	observability.EndSpan(span, err)

	if s.prom == nil {
		return
	}

	var vErr *review.ValidationError

	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, review.ErrNotFound):
		result = "not_found"
	case errors.Is(err, review.ErrForbidden):
		result = "forbidden"
	case errors.Is(err, review.ErrDuplicate):
		result = "duplicate"
	case errors.As(err, &vErr):
		result = "invalid"
	default:
		result = "error"
	}

	s.prom.RecordMutation(op, result)
}

func indexOf(all []review.Review, id string) int {
	return slices.IndexFunc(all, func(r review.Review) bool { return r.ID == id })
}

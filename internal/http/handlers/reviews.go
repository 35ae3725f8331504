package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/reviewhub/internal/domain/review"
	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/geocoder89/reviewhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const requestTimeout = 2 * time.Second

type ReviewsService interface {
	Create(ctx context.Context, caller user.Identity, req review.CreateReviewRequest) (review.Review, error)
	List(ctx context.Context, filter review.ListFilter) ([]review.Review, error)
	Get(ctx context.Context, id string) (review.Review, error)
	Update(ctx context.Context, caller user.Identity, id string, req review.UpdateReviewRequest) (review.Review, error)
	Delete(ctx context.Context, caller user.Identity, id string) error
}

type ReviewsHandler struct {
	svc ReviewsService
	log *slog.Logger
}

func NewReviewsHandler(svc ReviewsService, log *slog.Logger) *ReviewsHandler {
	RegisterValidators()

	if log == nil {
		log = slog.Default()
	}
	return &ReviewsHandler{svc: svc, log: log}
}

func (h *ReviewsHandler) CreateReview(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity")
		return
	}

	var req review.CreateReviewRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	created, err := h.svc.Create(cctx, caller, req)
	if err != nil {
		h.respondServiceError(ctx, err, "Could not create review")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"review": created})
}

func (h *ReviewsHandler) ListReviews(ctx *gin.Context) {
	filter, ok := parseListFilter(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	reviews, err := h.svc.List(cctx, filter)
	if err != nil {
		h.respondServiceError(ctx, err, "Could not list reviews")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, reviews)
}

func (h *ReviewsHandler) GetReview(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	r, err := h.svc.Get(cctx, ctx.Param("id"))
	if err != nil {
		h.respondServiceError(ctx, err, "Could not fetch review")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"review": r})
}

func (h *ReviewsHandler) UpdateReview(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity")
		return
	}

	var req review.UpdateReviewRequest
	if !BindOptionalJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	updated, err := h.svc.Update(cctx, caller, ctx.Param("id"), req)
	if err != nil {
		h.respondServiceError(ctx, err, "Could not update review")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"review": updated})
}

func (h *ReviewsHandler) DeleteReview(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Missing identity")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(cctx, caller, ctx.Param("id")); err != nil {
		h.respondServiceError(ctx, err, "Could not delete review")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// parseListFilter reads author, rating, status and sort. Empty values count as absent.
func parseListFilter(ctx *gin.Context) (review.ListFilter, bool) {
	var f review.ListFilter

	if v := strings.TrimSpace(ctx.Query("author")); v != "" {
		f.Author = &v
	}

	if v := strings.TrimSpace(ctx.Query("rating")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			RespondBadRequest(ctx, "rating must be an integer", gin.H{
				"fields": []FieldError{{Field: "rating", Rule: "type", Message: "must be an integer"}},
			})
			return review.ListFilter{}, false
		}
		f.Rating = &n
	}

	if v := strings.TrimSpace(ctx.Query("status")); v != "" {
		f.Status = &v
	}

	if v := strings.TrimSpace(ctx.Query("sort")); v != "" {
		f.Sort = &v
	}

	return f, true
}

func (h *ReviewsHandler) respondServiceError(ctx *gin.Context, err error, fallback string) {
	var vErr *review.ValidationError

	switch {
	case errors.As(err, &vErr):
		RespondBadRequest(ctx, vErr.Error(), gin.H{
			"fields": []FieldError{{Field: vErr.Field, Rule: vErr.Rule, Message: vErr.Message}},
		})
	case errors.Is(err, review.ErrNotFound):
		RespondNotFound(ctx, "Review not found")
	case errors.Is(err, review.ErrForbidden):
		RespondForbidden(ctx, "You are not allowed to modify this review")
	case errors.Is(err, review.ErrDuplicate):
		RespondConflict(ctx, "duplicate_review", "You have already reviewed this book")
	default:
		_ = ctx.Error(err)
		h.log.ErrorContext(ctx.Request.Context(), "review operation failed", "route", ctx.FullPath(), "err", err)
		RespondInternal(ctx, fallback)
	}
}

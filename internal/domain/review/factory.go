package review

import (
	"strings"
	"time"

	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateReviewRequest, owner user.Identity, now time.Time) Review {
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = DefaultStatus
	}

	return Review{
		ID:         uuid.NewString(),
		BookTitle:  strings.TrimSpace(req.BookTitle),
		Author:     strings.TrimSpace(req.Author),
		ReviewText: req.ReviewText,
		Rating:     int(req.Rating),
		Tags:       CapTags(req.Tags),
		Status:     status,
		UserID:     owner.UserID,
		Username:   owner.Username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Apply copies the provided fields of req onto r and refreshes UpdatedAt.
func (r Review) Apply(req UpdateReviewRequest, now time.Time) Review {
	if req.ReviewText != nil {
		r.ReviewText = *req.ReviewText
	}
	if req.Rating != nil {
		r.Rating = int(*req.Rating)
	}
	if req.Tags != nil {
		r.Tags = CapTags(*req.Tags)
	}
	r.UpdatedAt = now

	return r
}

// CapTags returns a copy holding at most MaxTags entries, never nil.
func CapTags(tags []string) []string {
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}

	out := make([]string, len(tags))
	copy(out, tags)

	return out
}

// NormalizeKey is the comparison form of a title or author for duplicate detection.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameBook reports whether r is owned by userID and names the same title/author pair.
func (r Review) SameBook(userID, bookTitle, author string) bool {
	return r.UserID == userID &&
		NormalizeKey(r.BookTitle) == NormalizeKey(bookTitle) &&
		NormalizeKey(r.Author) == NormalizeKey(author)
}

package service

import (
	"cmp"
	"slices"
	"strings"

	"github.com/geocoder89/reviewhub/internal/domain/review"
)

type sortKey int

const (
	sortNone sortKey = iota
	sortRating
	sortCreatedAt
)

type sortOrder struct {
	key  sortKey
	desc bool
}

// parseSort accepts "<key>[:<direction>]" with key rating, date or createdAt.
// Any direction other than desc sorts ascending.
func parseSort(raw *string) (sortOrder, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return sortOrder{}, nil
	}

	field, dir, _ := strings.Cut(strings.TrimSpace(*raw), ":")

	var o sortOrder
	switch strings.TrimSpace(field) {
	case "rating":
		o.key = sortRating
	case "date", "createdAt":
		o.key = sortCreatedAt
	default:
		return sortOrder{}, &review.ValidationError{
			Field:   "sort",
			Rule:    "oneof",
			Message: "sort key must be one of rating, date, createdAt",
		}
	}

	o.desc = strings.EqualFold(strings.TrimSpace(dir), "desc")

	return o, nil
}

// apply sorts in place; the sort is stable so ties keep storage order.
func (o sortOrder) apply(items []review.Review) {
	if o.key == sortNone {
		return
	}

	slices.SortStableFunc(items, func(a, b review.Review) int {
		var c int
		switch o.key {
		case sortRating:
			c = cmp.Compare(a.Rating, b.Rating)
		case sortCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}

		if o.desc {
			return -c
		}
		return c
	})
}

func matches(r review.Review, f review.ListFilter) bool {
	if f.Author != nil && !strings.Contains(strings.ToLower(r.Author), strings.ToLower(*f.Author)) {
		return false
	}
	if f.Rating != nil && r.Rating != *f.Rating {
		return false
	}
	if f.Status != nil && !strings.EqualFold(r.Status, *f.Status) {
		return false
	}
	return true
}

package review

import "strings"

func ValidateCreate(req CreateReviewRequest) error {
	if strings.TrimSpace(req.BookTitle) == "" {
		return invalid("bookTitle", "required", "is required")
	}
	if strings.TrimSpace(req.Author) == "" {
		return invalid("author", "required", "is required")
	}
	if strings.TrimSpace(req.ReviewText) == "" {
		return invalid("reviewText", "required", "is required")
	}

	return validateRating(int(req.Rating))
}

func ValidateUpdate(req UpdateReviewRequest) error {
	if req.Rating != nil {
		if err := validateRating(int(*req.Rating)); err != nil {
			return err
		}
	}
	if req.ReviewText != nil && strings.TrimSpace(*req.ReviewText) == "" {
		return invalid("reviewText", "notblank", "must not be blank")
	}

	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return invalid("rating", "range", "must be an integer between 1 and 5")
	}

	return nil
}

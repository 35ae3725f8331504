package review

import (
	"encoding/json"
	"time"

	"github.com/geocoder89/reviewhub/internal/domain/user"
)

const (
	MaxTags       = 10
	DefaultStatus = "pending"
)

type Review struct {
	ID         string    `json:"id"`
	BookTitle  string    `json:"bookTitle"`
	Author     string    `json:"author"`
	ReviewText string    `json:"reviewText"`
	Rating     int       `json:"rating"`
	Tags       []string  `json:"tags"`
	Status     string    `json:"status"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UnmarshalJSON tolerates the hand-edited forms of a stored review: numeric
// id and userId, and integral ratings written as 4.0.
func (r *Review) UnmarshalJSON(data []byte) error {
	type plain Review

	aux := struct {
		*plain
		ID     user.OpaqueID `json:"id"`
		UserID user.OpaqueID `json:"userId"`
		Rating Rating        `json:"rating"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.ID = string(aux.ID)
	r.UserID = string(aux.UserID)
	r.Rating = int(aux.Rating)
	return nil
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Author *string
	Rating *int
	Status *string
	Sort   *string
}

type CreateReviewRequest struct {
	BookTitle  string   `json:"bookTitle" binding:"required,notblank"`
	Author     string   `json:"author" binding:"required,notblank"`
	ReviewText string   `json:"reviewText" binding:"required,notblank"`
	Rating     Rating   `json:"rating" binding:"required,min=1,max=5"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status"`
}

// partial update, a nil field keeps the stored value.
type UpdateReviewRequest struct {
	ReviewText *string   `json:"reviewText" binding:"omitempty,notblank"`
	Rating     *Rating   `json:"rating" binding:"omitempty,min=1,max=5"`
	Tags       *[]string `json:"tags"`
}

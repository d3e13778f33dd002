package reviews

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/pagination"
)

// SortKey orders a review listing.
type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortOldest  SortKey = "oldest"
	SortHighest SortKey = "highest"
	SortLowest  SortKey = "lowest"
)

// ParseSortKey falls back to newest for unknown values.
func ParseSortKey(value string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(value))) {
	case SortOldest:
		return SortOldest
	case SortHighest:
		return SortHighest
	case SortLowest:
		return SortLowest
	}
	return SortNewest
}

// SubmitInput is a visitor's review. Strings are trimmed before validation.
type SubmitInput struct {
	Rating        int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title         string `json:"title" validate:"max=200"`
	Comment       string `json:"comment" validate:"required,min=10,max=1000"`
	CustomerName  string `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email,max=254"`
	CustomerPhone string `json:"customer_phone" validate:"max=20"`
}

// BindForm fills the input from a browser form post.
func (in *SubmitInput) BindForm(values url.Values) error {
	if raw := strings.TrimSpace(values.Get("rating")); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			msg := "rating must be a whole number"
			return pkgerrors.New(pkgerrors.CodeInvalidInput, msg).WithDetails(map[string]string{"rating": msg})
		}
		in.Rating = rating
	}
	in.Title = values.Get("title")
	in.Comment = values.Get("comment")
	in.CustomerName = values.Get("customer_name")
	in.CustomerEmail = values.Get("customer_email")
	in.CustomerPhone = values.Get("customer_phone")
	return nil
}

func (in *SubmitInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Comment = strings.TrimSpace(in.Comment)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
}

// ListParams filters and pages a review listing. Rating 0 means every rating.
type ListParams struct {
	Page   int
	Rating int
	Sort   SortKey
}

// ReviewDTO is the public view of a review; contact details are withheld.
type ReviewDTO struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title,omitempty"`
	Comment      string    `json:"comment"`
	IsApproved   bool      `json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListResult is one page of approved reviews with the product's aggregates.
type ListResult struct {
	Reviews    []ReviewDTO     `json:"reviews"`
	Pagination pagination.Page `json:"pagination"`
	Stats      Stats           `json:"stats"`
}

func toDTO(review models.ProductReview) ReviewDTO {
	return ReviewDTO{
		ID:           review.ID,
		CustomerName: review.CustomerName,
		Rating:       review.Rating,
		Title:        review.Title,
		Comment:      review.Comment,
		IsApproved:   review.IsApproved,
		CreatedAt:    review.CreatedAt,
	}
}

func toDTOs(rows []models.ProductReview) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out
}

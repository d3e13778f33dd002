package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evergreenfarmers/storefront/api/responses"
	"github.com/evergreenfarmers/storefront/api/validators"
	"github.com/evergreenfarmers/storefront/internal/reviews"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/pagination"
	"github.com/evergreenfarmers/storefront/pkg/validation"
)

const reviewSubmittedMessage = "Thank you! Your review has been submitted and will appear once approved."

type reviewListResponse struct {
	Success    bool                `json:"success"`
	Reviews    []reviews.ReviewDTO `json:"reviews"`
	Pagination pagination.Page     `json:"pagination"`
	Stats      reviews.Stats       `json:"stats"`
}

type reviewSubmitResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Review  *reviews.ReviewDTO `json:"review"`
}

type reviewStatsResponse struct {
	Success bool           `json:"success"`
	Stats   *reviews.Stats `json:"stats"`
}

func reviewsUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable")
}

func ReviewList(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, reviewsUnavailable())
			return
		}
		query := r.URL.Query()
		result, err := svc.List(r.Context(), chi.URLParam(r, "slug"), reviews.ListParams{
			Page:   pagination.ParsePage(query.Get("page")),
			Rating: validators.QueryInt(query, "rating", 0, 1, 5),
			Sort:   reviews.ParseSortKey(query.Get("sort")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, reviewListResponse{
			Success:    true,
			Reviews:    result.Reviews,
			Pagination: result.Pagination,
			Stats:      result.Stats,
		})
	}
}

// ReviewSubmit stores a review for moderation. Field problems come back as
// {success:false, errors:{field:message}}.
func ReviewSubmit(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, reviewsUnavailable())
			return
		}
		var input reviews.SubmitInput
		if err := validators.BindRequest(r, &input); err != nil {
			writeSubmissionError(w, r, logg, err)
			return
		}
		review, err := svc.Submit(r.Context(), chi.URLParam(r, "slug"), input)
		if err != nil {
			writeSubmissionError(w, r, logg, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, reviewSubmitResponse{
			Success: true,
			Message: reviewSubmittedMessage,
			Review:  review,
		})
	}
}

func ReviewStats(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, reviewsUnavailable())
			return
		}
		stats, err := svc.Stats(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, reviewStatsResponse{Success: true, Stats: stats})
	}
}

// writeSubmissionError renders field errors as a form error map and
// everything else through the standard error envelope.
func writeSubmissionError(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	if reviews.IsValidationError(err) {
		responses.WriteFormErrors(w, validation.FieldErrors(err))
		return
	}
	responses.WriteError(r.Context(), logg, w, err)
}

package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/metrics"
	"github.com/evergreenfarmers/storefront/pkg/pagination"
	"github.com/evergreenfarmers/storefront/pkg/validation"
)

// Service exposes review submission and the public review read paths.
type Service interface {
	Submit(ctx context.Context, productSlug string, input SubmitInput) (*ReviewDTO, error)
	List(ctx context.Context, productSlug string, params ListParams) (*ListResult, error)
	Stats(ctx context.Context, productSlug string) (*Stats, error)
	StatsForProduct(ctx context.Context, productID uuid.UUID) (Stats, error)
	RecentForProduct(ctx context.Context, productID uuid.UUID, limit int) ([]ReviewDTO, error)
}

type reviewStore interface {
	Create(ctx context.Context, review *models.ProductReview) error
	ExistsForEmail(ctx context.Context, productID uuid.UUID, email string) (bool, error)
	CountApproved(ctx context.Context, productID uuid.UUID, rating int) (int64, error)
	ListApproved(ctx context.Context, productID uuid.UUID, rating int, sort SortKey, offset, limit int) ([]models.ProductReview, error)
	RatingCounts(ctx context.Context, productID uuid.UUID) (map[int]int64, error)
}

type productFinder interface {
	FindActiveBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type service struct {
	repo     reviewStore
	products productFinder
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
	pageSize int
}

// NewService constructs a review service instance.
func NewService(repo reviewStore, products productFinder, logg *logger.Logger, m *metrics.StorefrontMetrics, cfg config.ReviewsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		products: products,
		logg:     logg,
		metrics:  m,
		pageSize: pagination.NormalizeLimit(cfg.PageSize),
	}, nil
}

func (s *service) product(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.products.FindActiveBySlug(ctx, slug)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Submit(ctx context.Context, productSlug string, input SubmitInput) (*ReviewDTO, error) {
	product, err := s.product(ctx, productSlug)
	if err != nil {
		s.metrics.IncReviewSubmission(metrics.ResultRejected)
		return nil, err
	}

	input.normalize()
	if err := validation.Struct(input); err != nil {
		s.metrics.IncReviewSubmission(metrics.ResultRejected)
		return nil, err
	}

	if input.CustomerEmail != "" {
		exists, err := s.repo.ExistsForEmail(ctx, product.ID, input.CustomerEmail)
		if err != nil {
			s.metrics.IncReviewSubmission(metrics.ResultError)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
		}
		if exists {
			s.metrics.IncReviewSubmission(metrics.ResultRejected)
			return nil, duplicateReview()
		}
	}

	review := &models.ProductReview{
		ProductID:     product.ID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Rating:        input.Rating,
		Title:         input.Title,
		Comment:       input.Comment,
		IsApproved:    false,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "") {
			s.metrics.IncReviewSubmission(metrics.ResultRejected)
			return nil, duplicateReview()
		}
		s.metrics.IncReviewSubmission(metrics.ResultError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}

	s.metrics.IncReviewSubmission(metrics.ResultSuccess)
	ctx = s.logg.WithFields(ctx, map[string]any{"product_id": product.ID.String(), "review_id": review.ID.String()})
	s.logg.Info(ctx, "review submitted for moderation")

	dto := toDTO(*review)
	return &dto, nil
}

func duplicateReview() error {
	return pkgerrors.New(pkgerrors.CodeDuplicateReview, "you have already reviewed this product").
		WithDetails(map[string]string{"customer_email": "you have already reviewed this product"})
}

// List degrades to an empty page when the review tables cannot be read.
func (s *service) List(ctx context.Context, productSlug string, params ListParams) (*ListResult, error) {
	product, err := s.product(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	if params.Rating < 0 || params.Rating > 5 {
		params.Rating = 0
	}

	empty := &ListResult{
		Reviews:    []ReviewDTO{},
		Pagination: pagination.Resolve(1, s.pageSize, 0),
		Stats:      ComputeStats(nil),
	}

	stats, err := s.StatsForProduct(ctx, product.ID)
	if err != nil {
		s.logg.Error(ctx, "reviews.list.stats_failed", err)
		return empty, nil
	}

	total, err := s.repo.CountApproved(ctx, product.ID, params.Rating)
	if err != nil {
		s.logg.Error(ctx, "reviews.list.count_failed", err)
		return empty, nil
	}
	page := pagination.Resolve(params.Page, s.pageSize, total)

	rows, err := s.repo.ListApproved(ctx, product.ID, params.Rating, params.Sort, page.Offset(), page.Size)
	if err != nil {
		s.logg.Error(ctx, "reviews.list.query_failed", err)
		return empty, nil
	}

	return &ListResult{
		Reviews:    toDTOs(rows),
		Pagination: page,
		Stats:      stats,
	}, nil
}

func (s *service) Stats(ctx context.Context, productSlug string) (*Stats, error) {
	product, err := s.product(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	stats, err := s.StatsForProduct(ctx, product.ID)
	if err != nil {
		s.logg.Error(ctx, "reviews.stats_failed", err)
		stats = ComputeStats(nil)
	}
	return &stats, nil
}

func (s *service) StatsForProduct(ctx context.Context, productID uuid.UUID) (Stats, error) {
	counts, err := s.repo.RatingCounts(ctx, productID)
	if err != nil {
		return ComputeStats(nil), err
	}
	return ComputeStats(counts), nil
}

func (s *service) RecentForProduct(ctx context.Context, productID uuid.UUID, limit int) ([]ReviewDTO, error) {
	rows, err := s.repo.ListApproved(ctx, productID, 0, SortNewest, 0, pagination.NormalizeLimit(limit))
	if err != nil {
		return []ReviewDTO{}, err
	}
	return toDTOs(rows), nil
}

// IsValidationError reports whether err carries per-field messages suitable
// for the {success:false, errors:{...}} reply.
func IsValidationError(err error) bool {
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) {
		return false
	}
	return typed.Code() == pkgerrors.CodeInvalidInput && validation.FieldErrors(err) != nil
}

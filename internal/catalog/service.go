package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/evergreenfarmers/storefront/internal/reviews"
	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/pagination"
	"github.com/evergreenfarmers/storefront/pkg/redis"
)

const (
	minSearchLength    = 2
	detailReviewLimit  = 10
	homeCacheKeyPrefix = "home"
)

// Service exposes the read-only storefront catalog.
type Service interface {
	Home(ctx context.Context) (*HomePage, error)
	ListProducts(ctx context.Context, f Filter) (*ListResult, error)
	ProductDetail(ctx context.Context, slug string) (*ProductDetail, error)
	CategoryPage(ctx context.Context, slug string, f Filter) (*CategoryPage, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
	Search(ctx context.Context, term string) ([]SearchHit, error)
}

type reviewReader interface {
	StatsForProduct(ctx context.Context, productID uuid.UUID) (reviews.Stats, error)
	RecentForProduct(ctx context.Context, productID uuid.UUID, limit int) ([]reviews.ReviewDTO, error)
}

type service struct {
	repo    *Repository
	reviews reviewReader
	cache   redis.Cache
	logg    *logger.Logger
	cfg     config.CatalogConfig
}

// NewService constructs the catalog service. cache may be nil, in which case
// the homepage is always read from the database.
func NewService(repo *Repository, reviewSvc reviewReader, cache redis.Cache, logg *logger.Logger, cfg config.CatalogConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if reviewSvc == nil {
		return nil, fmt.Errorf("review reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.PageSize = pagination.NormalizeLimit(cfg.PageSize)
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if cfg.HomeSectionSize <= 0 {
		cfg.HomeSectionSize = 8
	}
	if cfg.RelatedLimit <= 0 {
		cfg.RelatedLimit = 4
	}
	return &service{
		repo:    repo,
		reviews: reviewSvc,
		cache:   cache,
		logg:    logg,
		cfg:     cfg,
	}, nil
}

func dependency(err error, action string) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func (s *service) Home(ctx context.Context) (*HomePage, error) {
	key := ""
	if s.cache != nil && s.cfg.HomeCacheTTL > 0 {
		key = s.cache.CacheKey(homeCacheKeyPrefix)
		var cached HomePage
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.home.cache_read_failed")
		} else if found {
			return &cached, nil
		}
	}

	page, err := s.buildHome(ctx)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.SetJSON(ctx, key, page, s.cfg.HomeCacheTTL); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.home.cache_write_failed")
		}
	}
	return page, nil
}

type homeBlock struct {
	section HomeSection
	dest    *[]ProductCard
}

func (s *service) buildHome(ctx context.Context) (*HomePage, error) {
	page := &HomePage{}
	sections := []homeBlock{
		{SectionFeatured, &page.Featured},
		{SectionNewest, &page.Newest},
		{SectionOrganic, &page.Organic},
		{SectionTopRated, &page.TopRated},
		{SectionVegetables, &page.Vegetables},
		{SectionFruits, &page.Fruits},
	}

	for _, entry := range sections {
		rows, err := s.repo.ListSection(ctx, entry.section, s.cfg.HomeSectionSize)
		if err != nil {
			return nil, dependency(err, "load home section "+string(entry.section))
		}
		*entry.dest = newProductCards(rows)
	}

	categories, err := s.repo.CategoriesWithCounts(ctx)
	if err != nil {
		return nil, dependency(err, "load categories")
	}
	page.Categories = nonNilCategories(categories)
	return page, nil
}

func (s *service) ListProducts(ctx context.Context, f Filter) (*ListResult, error) {
	rows, page, err := s.repo.ListProducts(ctx, f, s.cfg.PageSize)
	if err != nil {
		return nil, dependency(err, "list products")
	}
	f.Page = page.Number
	return &ListResult{
		Products:   newProductCards(rows),
		Pagination: page,
		Facets:     s.facets(ctx),
		Filters:    f,
	}, nil
}

// facets is best effort: a failing facet query is logged and left empty.
func (s *service) facets(ctx context.Context) Facets {
	var errs error
	out := Facets{}

	categories, err := s.repo.CategoriesWithCounts(ctx)
	errs = multierr.Append(errs, err)
	out.Categories = nonNilCategories(categories)

	subs, err := s.repo.SubCategoryFacets(ctx, nil)
	errs = multierr.Append(errs, err)
	out.SubCategories = nonNilFacets(subs)

	brands, err := s.repo.BrandFacets(ctx)
	errs = multierr.Append(errs, err)
	out.Brands = nonNilFacets(brands)

	tags, err := s.repo.TagFacets(ctx)
	errs = multierr.Append(errs, err)
	out.Tags = nonNilFacets(tags)

	bounds, err := s.repo.PriceBounds(ctx)
	errs = multierr.Append(errs, err)
	out.PriceRange = bounds

	if errs != nil {
		s.logg.Error(ctx, "catalog.facets_failed", errs)
	}
	return out
}

func (s *service) ProductDetail(ctx context.Context, slug string) (*ProductDetail, error) {
	product, err := s.repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, dependency(err, "load product")
	}

	detail := newProductDetail(product)

	related, err := s.repo.Related(ctx, product, s.cfg.RelatedLimit)
	if err != nil {
		s.logg.Error(ctx, "catalog.detail.related_failed", err)
	} else {
		detail.Related = newProductCards(related)
	}

	recent, err := s.reviews.RecentForProduct(ctx, product.ID, detailReviewLimit)
	if err != nil {
		s.logg.Error(ctx, "catalog.detail.reviews_failed", err)
	} else {
		detail.Reviews = recent
	}

	stats, err := s.reviews.StatsForProduct(ctx, product.ID)
	if err != nil {
		s.logg.Error(ctx, "catalog.detail.review_stats_failed", err)
		stats = reviews.ComputeStats(nil)
	}
	detail.ReviewStats = stats

	return detail, nil
}

func (s *service) CategoryPage(ctx context.Context, slug string, f Filter) (*CategoryPage, error) {
	category, err := s.repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, dependency(err, "load category")
	}

	subs, err := s.repo.SubCategoryFacets(ctx, &category.ID)
	if err != nil {
		return nil, dependency(err, "load subcategories")
	}

	f.Category = category.Slug
	rows, page, err := s.repo.ListProducts(ctx, f, s.cfg.PageSize)
	if err != nil {
		return nil, dependency(err, "list category products")
	}
	f.Page = page.Number

	return &CategoryPage{
		Category:      newCategoryDTO(category),
		SubCategories: nonNilFacets(subs),
		Products:      newProductCards(rows),
		Pagination:    page,
		Filters:       f,
	}, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.repo.CategoriesWithCounts(ctx)
	if err != nil {
		return nil, dependency(err, "load categories")
	}
	return nonNilCategories(rows), nil
}

// Search returns an empty slice for terms shorter than two characters. A
// failing query is logged and also answers with no hits.
func (s *service) Search(ctx context.Context, term string) ([]SearchHit, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < minSearchLength {
		return []SearchHit{}, nil
	}
	rows, err := s.repo.Search(ctx, term, s.cfg.SearchLimit)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "term", term), "catalog.search_failed", err)
		return []SearchHit{}, nil
	}
	hits := make([]SearchHit, 0, len(rows))
	for i := range rows {
		hits = append(hits, newSearchHit(&rows[i]))
	}
	return hits, nil
}

func newCategoryDTO(c *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
	}
}

func nonNilCategories(rows []CategoryCount) []CategoryCount {
	if rows == nil {
		return []CategoryCount{}
	}
	return rows
}

func nonNilFacets(rows []FacetCount) []FacetCount {
	if rows == nil {
		return []FacetCount{}
	}
	return rows
}

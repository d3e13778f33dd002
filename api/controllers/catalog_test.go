package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/evergreenfarmers/storefront/internal/catalog"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
)

type stubCatalogService struct {
	list   *catalog.ListResult
	detail *catalog.ProductDetail
	hits   []catalog.SearchHit
	err    error

	lastFilter catalog.Filter
	lastSlug   string
	lastTerm   string
}

func (s *stubCatalogService) Home(ctx context.Context) (*catalog.HomePage, error) {
	return &catalog.HomePage{}, s.err
}

func (s *stubCatalogService) ListProducts(ctx context.Context, f catalog.Filter) (*catalog.ListResult, error) {
	s.lastFilter = f
	return s.list, s.err
}

func (s *stubCatalogService) ProductDetail(ctx context.Context, slug string) (*catalog.ProductDetail, error) {
	s.lastSlug = slug
	return s.detail, s.err
}

func (s *stubCatalogService) CategoryPage(ctx context.Context, slug string, f catalog.Filter) (*catalog.CategoryPage, error) {
	s.lastSlug, s.lastFilter = slug, f
	return &catalog.CategoryPage{}, s.err
}

func (s *stubCatalogService) Categories(ctx context.Context) ([]catalog.CategoryCount, error) {
	return []catalog.CategoryCount{}, s.err
}

func (s *stubCatalogService) Search(ctx context.Context, term string) ([]catalog.SearchHit, error) {
	s.lastTerm = term
	return s.hits, s.err
}

func TestProductListParsesFilter(t *testing.T) {
	svc := &stubCatalogService{list: &catalog.ListResult{Products: []catalog.ProductCard{}}}
	req := httptest.NewRequest(http.MethodGet, "/products/?category=seeds&min_price=abc&sort=price_low&page=3&organic=true", nil)
	resp := httptest.NewRecorder()
	ProductList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	f := svc.lastFilter
	if f.Category != "seeds" || f.Sort != catalog.SortPriceLow || f.Page != 3 || !f.Organic {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if f.MinPrice.Valid {
		t.Fatalf("bad min_price should be dropped")
	}
}

func TestProductDetailNotFound(t *testing.T) {
	svc := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/products/ghost/", nil), map[string]string{"slug": "ghost"})
	resp := httptest.NewRecorder()
	ProductDetail(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if svc.lastSlug != "ghost" {
		t.Fatalf("unexpected slug %q", svc.lastSlug)
	}
	var body errorBody
	decodeBody(t, resp, &body)
	if body.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
}

func TestSearchReturnsBareArray(t *testing.T) {
	svc := &stubCatalogService{hits: []catalog.SearchHit{{ID: uuid.New(), Name: "Maize Seed", Slug: "maize-seed", URL: "/products/maize-seed/"}}}
	req := httptest.NewRequest(http.MethodGet, "/api/search/?q=+maize+", nil)
	resp := httptest.NewRecorder()
	Search(svc, nil).ServeHTTP(resp, req)

	var hits []catalog.SearchHit
	decodeBody(t, resp, &hits)
	if len(hits) != 1 || hits[0].Slug != "maize-seed" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if svc.lastTerm != "maize" {
		t.Fatalf("expected trimmed term got %q", svc.lastTerm)
	}
}

func TestCategoryPagePassesSlugAndFilter(t *testing.T) {
	svc := &stubCatalogService{}
	req := httptest.NewRequest(http.MethodGet, "/category/fertilizers/?subcategory=npk", nil)
	req = withURLParams(req, map[string]string{"slug": "fertilizers"})
	resp := httptest.NewRecorder()
	CategoryPage(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastSlug != "fertilizers" || svc.lastFilter.SubCategory != "npk" {
		t.Fatalf("unexpected call: slug=%q filter=%+v", svc.lastSlug, svc.lastFilter)
	}
}

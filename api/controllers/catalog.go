package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evergreenfarmers/storefront/api/responses"
	"github.com/evergreenfarmers/storefront/api/validators"
	"github.com/evergreenfarmers/storefront/internal/catalog"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
)

func catalogUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable")
}

// Home serves the landing page sections.
func Home(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		page, err := svc.Home(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ProductList serves the filtered, sorted and paginated product listing.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		result, err := svc.ListProducts(r.Context(), catalog.ParseFilter(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		detail, err := svc.ProductDetail(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func CategoryPage(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		page, err := svc.CategoryPage(r.Context(), chi.URLParam(r, "slug"), catalog.ParseFilter(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func Categories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		rows, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// Search answers the header quick search with a bare array so the
// storefront script can render suggestions directly.
func Search(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		hits, err := svc.Search(r.Context(), validators.SearchTerm(r.URL.Query().Get("q")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, hits)
	}
}

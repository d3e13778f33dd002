package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/evergreenfarmers/storefront/api/middleware"
	"github.com/evergreenfarmers/storefront/api/responses"
	"github.com/evergreenfarmers/storefront/api/validators"
	"github.com/evergreenfarmers/storefront/internal/cart"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/types"
)

const cartSummaryPath = "/cart/summary/"

type cartQuantityRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

func (c *cartQuantityRequest) BindForm(values url.Values) error {
	c.ProductID = values.Get("product_id")
	if strings.TrimSpace(values.Get("quantity")) == "" {
		return nil
	}
	qty, err := validators.FormInt(values.Get("quantity"), 1, "quantity")
	if err != nil {
		return err
	}
	c.Quantity = &qty
	return nil
}

type cartSummaryResponse struct {
	Success bool          `json:"success"`
	Cart    *cart.Summary `json:"cart"`
}

// respondCart answers a cart mutation: JSON callers get the action payload,
// form posts are sent back to the page they came from.
func respondCart(ctx context.Context, w http.ResponseWriter, r *http.Request, logg *logger.Logger, svc cart.Service, summary *cart.Summary, message string, err error) {
	if !validators.WantsJSON(r) {
		if err != nil && logg != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.form_action_failed")
		}
		target := r.Referer()
		if target == "" {
			target = cartSummaryPath
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	if summary == nil {
		summary = svc.Summary(ctx, middleware.CartSessionFromContext(ctx))
	}
	responses.WriteCartAction(ctx, logg, w, err, types.CartActionResponse{
		Message:    message,
		CartTotal:  summary.TotalItems,
		CartAmount: summary.TotalAmount,
	})
}

func cartUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
}

// CartAdd adds a quantity (default 1) of the product in the path.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, cartUnavailable())
			return
		}
		productID, err := validators.ParseUUIDParam(chi.URLParam(r, "productId"), "product")
		if err != nil {
			respondCart(ctx, w, r, logg, svc, nil, "", err)
			return
		}

		var payload cartQuantityRequest
		if err := validators.BindRequest(r, &payload); err != nil {
			respondCart(ctx, w, r, logg, svc, nil, "", err)
			return
		}
		quantity := 1
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}

		summary, err := svc.AddItem(ctx, middleware.CartSessionFromContext(ctx), productID, quantity)
		message := "Item added to cart"
		if err == nil {
			if line := summary.Line(productID); line != nil {
				message = fmt.Sprintf("%s added to cart", line.ProductName)
			}
		}
		respondCart(ctx, w, r, logg, svc, summary, message, err)
	}
}

// CartUpdate sets a line's quantity; zero or less removes it.
func CartUpdate(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, cartUnavailable())
			return
		}
		itemID, err := validators.ParseUUIDParam(chi.URLParam(r, "itemId"), "cart item")
		if err != nil {
			respondCart(ctx, w, r, logg, svc, nil, "", err)
			return
		}

		var payload cartQuantityRequest
		if err := validators.BindRequest(r, &payload); err != nil {
			respondCart(ctx, w, r, logg, svc, nil, "", err)
			return
		}
		if payload.Quantity == nil {
			err := pkgerrors.New(pkgerrors.CodeInvalidInput, "quantity is required").
				WithDetails(map[string]string{"quantity": "is required"})
			respondCart(ctx, w, r, logg, svc, nil, "", err)
			return
		}

		summary, err := svc.UpdateItem(ctx, middleware.CartSessionFromContext(ctx), itemID, *payload.Quantity)
		message := "Cart updated"
		if *payload.Quantity <= 0 {
			message = "Item removed from cart"
		}
		respondCart(ctx, w, r, logg, svc, summary, message, err)
	}
}

func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, cartUnavailable())
			return
		}
		itemID, err := validators.ParseUUIDParam(chi.URLParam(r, "itemId"), "cart item")
		if err != nil {
			respondCart(ctx, w, r, logg, svc, nil, "", err)
			return
		}
		summary, err := svc.RemoveItem(ctx, middleware.CartSessionFromContext(ctx), itemID)
		respondCart(ctx, w, r, logg, svc, summary, "Item removed from cart", err)
	}
}

func CartSummary(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, cartUnavailable())
			return
		}
		summary := svc.Summary(ctx, middleware.CartSessionFromContext(ctx))
		responses.WriteJSON(w, http.StatusOK, cartSummaryResponse{Success: true, Cart: summary})
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, cartUnavailable())
			return
		}
		err := svc.Clear(ctx, middleware.CartSessionFromContext(ctx))
		var summary *cart.Summary
		if err == nil {
			summary = &cart.Summary{Items: []cart.Line{}, TotalAmount: "0.00"}
		}
		respondCart(ctx, w, r, logg, svc, summary, "Cart cleared", err)
	}
}

package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evergreenfarmers/storefront/api/middleware"
	"github.com/evergreenfarmers/storefront/api/responses"
	"github.com/evergreenfarmers/storefront/api/validators"
	"github.com/evergreenfarmers/storefront/internal/checkout"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/validation"
)

type checkoutResponse struct {
	Success      bool   `json:"success"`
	OrderNumber  string `json:"order_number"`
	Persisted    bool   `json:"persisted"`
	Message      string `json:"message"`
	WhatsAppURL  string `json:"whatsapp_url"`
	FinalAmount  string `json:"final_amount"`
	SkippedItems int    `json:"skipped_items,omitempty"`
}

func newCheckoutResponse(result *checkout.Result) checkoutResponse {
	return checkoutResponse{
		Success:      true,
		OrderNumber:  result.OrderNumber,
		Persisted:    result.Persisted,
		Message:      result.Message,
		WhatsAppURL:  result.WhatsAppURL,
		FinalAmount:  result.FinalAmount,
		SkippedItems: result.SkippedItems,
	}
}

// checkoutFieldErrors flattens missing-field and validation errors into the
// {field: message} map the checkout form renders.
func checkoutFieldErrors(err error) map[string]string {
	if fields := validation.FieldErrors(err); fields != nil {
		return fields
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeMissingField {
		return nil
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return nil
	}
	missing, _ := details["fields"].([]string)
	out := make(map[string]string, len(missing))
	for _, field := range missing {
		out[field] = "This field is required"
	}
	return out
}

func checkoutUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable")
}

// CheckoutPreview serves the checkout page data. Browsers with an empty cart
// are sent back to the cart.
func CheckoutPreview(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, checkoutUnavailable())
			return
		}
		preview, err := svc.Prepare(ctx, middleware.CartSessionFromContext(ctx))
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart) && !validators.WantsJSON(r) {
				http.Redirect(w, r, cartSummaryPath, http.StatusSeeOther)
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// CheckoutSubmit places the order from the checkout form. Form posts are
// redirected straight to WhatsApp; JSON callers get the checkout payload.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, checkoutUnavailable())
			return
		}
		var req checkout.Request
		if err := validators.BindRequest(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(ctx, middleware.CartSessionFromContext(ctx), req)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart) && !validators.WantsJSON(r) {
				http.Redirect(w, r, cartSummaryPath, http.StatusSeeOther)
				return
			}
			writeCheckoutError(w, r, logg, err)
			return
		}

		if !validators.WantsJSON(r) {
			http.Redirect(w, r, result.WhatsAppURL, http.StatusSeeOther)
			return
		}
		responses.WriteJSON(w, http.StatusOK, newCheckoutResponse(result))
	}
}

// CheckoutWhatsApp is the API checkout used by the storefront script.
func CheckoutWhatsApp(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, checkoutUnavailable())
			return
		}
		var req checkout.Request
		if err := validators.BindRequest(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.PlaceOrder(ctx, middleware.CartSessionFromContext(ctx), req)
		if err != nil {
			writeCheckoutError(w, r, logg, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, newCheckoutResponse(result))
	}
}

func writeCheckoutError(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	if fields := checkoutFieldErrors(err); len(fields) > 0 {
		if logg != nil {
			logg.Warn(logg.WithField(r.Context(), "fields", fields), "checkout.invalid_form")
		}
		responses.WriteFormErrors(w, fields)
		return
	}
	responses.WriteError(r.Context(), logg, w, err)
}

// OrderLookup serves the confirmation view of a placed order to the cart
// session that placed it.
func OrderLookup(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, checkoutUnavailable())
			return
		}
		view, err := svc.OrderByNumber(ctx, middleware.CartSessionFromContext(ctx), chi.URLParam(r, "orderNumber"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

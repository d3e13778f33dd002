package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/evergreenfarmers/storefront/api/middleware"
	"github.com/evergreenfarmers/storefront/internal/checkout"
	"github.com/evergreenfarmers/storefront/internal/orders"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
)

type stubCheckoutService struct {
	preview *checkout.Preview
	result  *checkout.Result
	order   *orders.OrderView
	err     error

	orderSession string

	lastSession string
	lastRequest checkout.Request
}

func (s *stubCheckoutService) Prepare(ctx context.Context, sessionKey string) (*checkout.Preview, error) {
	s.lastSession = sessionKey
	return s.preview, s.err
}

func (s *stubCheckoutService) PlaceOrder(ctx context.Context, sessionKey string, req checkout.Request) (*checkout.Result, error) {
	s.lastSession, s.lastRequest = sessionKey, req
	return s.result, s.err
}

// OrderByNumber mimics the service: only the placing session sees the order.
func (s *stubCheckoutService) OrderByNumber(ctx context.Context, sessionKey, number string) (*orders.OrderView, error) {
	s.lastSession = sessionKey
	if s.err != nil {
		return nil, s.err
	}
	if s.order == nil || sessionKey != s.orderSession {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.order, nil
}

func sampleResult() *checkout.Result {
	return &checkout.Result{
		OrderNumber: "EGF260304AB12CD",
		Persisted:   true,
		Message:     "*NEW ORDER*",
		WhatsAppURL: "https://wa.me/254700000000?text=%2ANEW+ORDER%2A",
		FinalAmount: "450.00",
	}
}

func TestCheckoutWhatsAppReturnsPayload(t *testing.T) {
	svc := &stubCheckoutService{result: sampleResult()}
	req := ajaxRequest(http.MethodPost, "/checkout/whatsapp/", `{"name":" Wanjiku ","phone":"0712345678","address":"Plot 12"}`)
	resp := httptest.NewRecorder()
	CheckoutWhatsApp(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body checkoutResponse
	decodeBody(t, resp, &body)
	if !body.Success || !body.Persisted || body.OrderNumber != "EGF260304AB12CD" || body.WhatsAppURL == "" {
		t.Fatalf("unexpected payload: %+v", body)
	}
	if svc.lastSession != "session-abc" {
		t.Fatalf("unexpected session %q", svc.lastSession)
	}
	if svc.lastRequest.Name != " Wanjiku " {
		t.Fatalf("request should reach the service untouched, got %q", svc.lastRequest.Name)
	}
}

func TestCheckoutWhatsAppMissingFields(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeMissingField, "missing required fields").
		WithDetails(map[string]any{"fields": []string{"name", "address"}})}
	req := ajaxRequest(http.MethodPost, "/checkout/whatsapp/", `{"phone":"0712345678"}`)
	resp := httptest.NewRecorder()
	CheckoutWhatsApp(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var body formErrorBody
	decodeBody(t, resp, &body)
	if body.Success || len(body.Errors) != 2 || body.Errors["name"] != "This field is required" {
		t.Fatalf("unexpected errors: %+v", body)
	}
}

func TestCheckoutWhatsAppEmptyCart(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")}
	req := ajaxRequest(http.MethodPost, "/checkout/whatsapp/", `{}`)
	resp := httptest.NewRecorder()
	CheckoutWhatsApp(svc, nil).ServeHTTP(resp, req)

	var body errorBody
	decodeBody(t, resp, &body)
	if resp.Code != http.StatusBadRequest || body.Error.Code != string(pkgerrors.CodeEmptyCart) {
		t.Fatalf("unexpected response %d %+v", resp.Code, body)
	}
}

func TestCheckoutSubmitFormRedirectsToWhatsApp(t *testing.T) {
	svc := &stubCheckoutService{result: sampleResult()}
	form := url.Values{"name": {"Wanjiku"}, "phone": {"0712345678"}, "address": {"Plot 12"}}
	req := httptest.NewRequest(http.MethodPost, "/checkout/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	CheckoutSubmit(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != sampleResult().WhatsAppURL {
		t.Fatalf("unexpected redirect %q", loc)
	}
	if svc.lastRequest.Address != "Plot 12" {
		t.Fatalf("form not bound: %+v", svc.lastRequest)
	}
}

func TestCheckoutPreviewEmptyCartRedirects(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")}
	req := httptest.NewRequest(http.MethodGet, "/checkout/", nil)
	req = req.WithContext(middleware.WithCartSession(req.Context(), "session-abc"))
	resp := httptest.NewRecorder()
	CheckoutPreview(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != cartSummaryPath {
		t.Fatalf("expected redirect to cart, got %d %q", resp.Code, resp.Header().Get("Location"))
	}
}

func TestOrderLookupNotFound(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/orders/EGF1/", nil), map[string]string{"orderNumber": "EGF1"})
	resp := httptest.NewRecorder()
	OrderLookup(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func orderLookupRequest(session string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/orders/ORD-AB12CD34/", nil)
	req = req.WithContext(middleware.WithCartSession(req.Context(), session))
	return withURLParams(req, map[string]string{"orderNumber": "ORD-AB12CD34"})
}

func TestOrderLookupOwnSession(t *testing.T) {
	svc := &stubCheckoutService{
		order:        &orders.OrderView{OrderNumber: "ORD-AB12CD34", DeliveryPhone: "0712345678"},
		orderSession: "session-owner",
	}
	resp := httptest.NewRecorder()
	OrderLookup(svc, nil).ServeHTTP(resp, orderLookupRequest("session-owner"))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "0712345678") {
		t.Fatalf("owner should see delivery details: %s", resp.Body.String())
	}
}

func TestOrderLookupForeignSessionGetsNotFound(t *testing.T) {
	svc := &stubCheckoutService{
		order:        &orders.OrderView{OrderNumber: "ORD-AB12CD34", DeliveryPhone: "0712345678"},
		orderSession: "session-owner",
	}
	resp := httptest.NewRecorder()
	OrderLookup(svc, nil).ServeHTTP(resp, orderLookupRequest("session-stranger"))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if svc.lastSession != "session-stranger" {
		t.Fatalf("lookup should use the request's cart session, got %q", svc.lastSession)
	}
	if strings.Contains(resp.Body.String(), "0712345678") {
		t.Fatalf("foreign session must not see delivery details: %s", resp.Body.String())
	}
}

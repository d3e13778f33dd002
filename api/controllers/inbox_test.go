package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/evergreenfarmers/storefront/internal/contact"
	"github.com/evergreenfarmers/storefront/internal/newsletter"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/types"
	"github.com/evergreenfarmers/storefront/pkg/validation"
)

type stubNewsletterService struct {
	outcome newsletter.Outcome
	err     error
	last    string
}

func (s *stubNewsletterService) Subscribe(ctx context.Context, input newsletter.SubscribeInput) (newsletter.Outcome, error) {
	s.last = input.Email
	if err := validation.Struct(input); err != nil {
		return "", err
	}
	return s.outcome, s.err
}

func (s *stubNewsletterService) Unsubscribe(ctx context.Context, input newsletter.UnsubscribeInput) error {
	s.last = input.Email
	return s.err
}

type stubContactService struct {
	err  error
	last contact.Input
}

func (s *stubContactService) Submit(ctx context.Context, input contact.Input) (*models.ContactMessage, error) {
	s.last = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.ContactMessage{Name: input.Name}, nil
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestNewsletterSubscribeForm(t *testing.T) {
	svc := &stubNewsletterService{outcome: newsletter.OutcomeSubscribed}
	resp := httptest.NewRecorder()
	NewsletterSubscribe(svc, nil).ServeHTTP(resp, formRequest("/newsletter/subscribe/", url.Values{"email": {"farmer@example.com"}}))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body types.MessageResponse
	decodeBody(t, resp, &body)
	if !body.Success || body.Message != newsletter.OutcomeSubscribed.Message() {
		t.Fatalf("unexpected payload: %+v", body)
	}
	if svc.last != "farmer@example.com" {
		t.Fatalf("unexpected email %q", svc.last)
	}
}

func TestNewsletterSubscribeInvalidEmail(t *testing.T) {
	svc := &stubNewsletterService{outcome: newsletter.OutcomeSubscribed}
	resp := httptest.NewRecorder()
	NewsletterSubscribe(svc, nil).ServeHTTP(resp, formRequest("/newsletter/subscribe/", url.Values{"email": {"nope"}}))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var body formErrorBody
	decodeBody(t, resp, &body)
	if body.Errors["email"] == "" {
		t.Fatalf("expected email error: %+v", body)
	}
}

func TestNewsletterUnsubscribeUnknown(t *testing.T) {
	svc := &stubNewsletterService{err: pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")}
	resp := httptest.NewRecorder()
	NewsletterUnsubscribe(svc, nil).ServeHTTP(resp, formRequest("/newsletter/unsubscribe/", url.Values{"email": {"ghost@example.com"}}))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestContactSubmit(t *testing.T) {
	svc := &stubContactService{}
	resp := httptest.NewRecorder()
	ContactSubmit(svc, nil).ServeHTTP(resp, formRequest("/contact/", url.Values{
		"name":    {"Achieng"},
		"email":   {"achieng@example.com"},
		"subject": {"order"},
		"message": {"Where is my fertilizer delivery?"},
	}))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.last.Subject != "order" || svc.last.Name != "Achieng" {
		t.Fatalf("form not bound: %+v", svc.last)
	}
}

func TestContactSubmitFieldErrors(t *testing.T) {
	svc := &stubContactService{err: pkgerrors.New(pkgerrors.CodeInvalidInput, "invalid subject").
		WithDetails(map[string]string{"subject": "subject is invalid"})}
	resp := httptest.NewRecorder()
	ContactSubmit(svc, nil).ServeHTTP(resp, formRequest("/contact/", url.Values{"subject": {"spam"}}))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var body formErrorBody
	decodeBody(t, resp, &body)
	if body.Errors["subject"] != "subject is invalid" {
		t.Fatalf("unexpected errors: %+v", body)
	}
}

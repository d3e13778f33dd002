package controllers

import (
	"net/http"

	"github.com/evergreenfarmers/storefront/api/responses"
	"github.com/evergreenfarmers/storefront/api/validators"
	"github.com/evergreenfarmers/storefront/internal/contact"
	"github.com/evergreenfarmers/storefront/internal/newsletter"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/types"
)

func NewsletterSubscribe(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "newsletter service unavailable"))
			return
		}
		var input newsletter.SubscribeInput
		if err := validators.BindRequest(r, &input); err != nil {
			writeSubmissionError(w, r, logg, err)
			return
		}
		outcome, err := svc.Subscribe(r.Context(), input)
		if err != nil {
			writeSubmissionError(w, r, logg, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, types.MessageResponse{Success: true, Message: outcome.Message()})
	}
}

func NewsletterUnsubscribe(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "newsletter service unavailable"))
			return
		}
		var input newsletter.UnsubscribeInput
		if err := validators.BindRequest(r, &input); err != nil {
			writeSubmissionError(w, r, logg, err)
			return
		}
		if err := svc.Unsubscribe(r.Context(), input); err != nil {
			writeSubmissionError(w, r, logg, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, types.MessageResponse{
			Success: true,
			Message: "You have been unsubscribed from our newsletter.",
		})
	}
}

func ContactSubmit(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}
		var input contact.Input
		if err := validators.BindRequest(r, &input); err != nil {
			writeSubmissionError(w, r, logg, err)
			return
		}
		if _, err := svc.Submit(r.Context(), input); err != nil {
			writeSubmissionError(w, r, logg, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, types.MessageResponse{
			Success: true,
			Message: "Thank you for your message! We will get back to you soon.",
		})
	}
}

package newsletter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/db/models"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/validation"
)

// SubscribeInput is the newsletter sign-up form.
type SubscribeInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"max=100"`
}

func (in *SubscribeInput) BindForm(values url.Values) error {
	in.Email = values.Get("email")
	in.Name = values.Get("name")
	return nil
}

// UnsubscribeInput names the address to drop.
type UnsubscribeInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func (in *UnsubscribeInput) BindForm(values url.Values) error {
	in.Email = values.Get("email")
	return nil
}

// Outcome tells callers which message to show after a subscribe.
type Outcome string

const (
	OutcomeSubscribed        Outcome = "subscribed"
	OutcomeReactivated       Outcome = "reactivated"
	OutcomeAlreadySubscribed Outcome = "already_subscribed"
)

// Message is the visitor-facing confirmation for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeReactivated:
		return "Welcome back! Your subscription has been reactivated."
	case OutcomeAlreadySubscribed:
		return "You are already subscribed to our newsletter."
	default:
		return "Thank you for subscribing to our newsletter!"
	}
}

type Service interface {
	Subscribe(ctx context.Context, input SubscribeInput) (Outcome, error)
	Unsubscribe(ctx context.Context, input UnsubscribeInput) error
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("newsletter repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func normalize(email, name string) (string, string) {
	return strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(name)
}

// Subscribe is idempotent: an active address is left alone and an inactive
// one is reactivated.
func (s *service) Subscribe(ctx context.Context, input SubscribeInput) (Outcome, error) {
	input.Email, input.Name = normalize(input.Email, input.Name)
	if err := validation.Struct(input); err != nil {
		return "", err
	}

	existing, err := s.repo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil && existing.IsActive:
		return OutcomeAlreadySubscribed, nil
	case err == nil:
		if err := s.repo.SetActive(ctx, existing, true, input.Name); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reactivate subscription")
		}
		s.logg.Info(s.logg.WithField(ctx, "email", input.Email), "newsletter.reactivated")
		return OutcomeReactivated, nil
	case !db.IsNotFound(err):
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}

	sub := &models.NewsletterSubscription{Email: input.Email, Name: input.Name, IsActive: true}
	if err := s.repo.Create(ctx, sub); err != nil {
		// a concurrent sign-up for the same address won the insert
		if db.IsUniqueViolation(err, "") {
			return OutcomeAlreadySubscribed, nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create subscription")
	}
	s.logg.Info(s.logg.WithField(ctx, "email", input.Email), "newsletter.subscribed")
	return OutcomeSubscribed, nil
}

func (s *service) Unsubscribe(ctx context.Context, input UnsubscribeInput) error {
	input.Email, _ = normalize(input.Email, "")
	if err := validation.Struct(input); err != nil {
		return err
	}

	existing, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "email address not found in our newsletter list")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if !existing.IsActive {
		return nil
	}
	if err := s.repo.SetActive(ctx, existing, false, ""); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate subscription")
	}
	s.logg.Info(s.logg.WithField(ctx, "email", input.Email), "newsletter.unsubscribed")
	return nil
}

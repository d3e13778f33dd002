package contact

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gorm.io/gorm"

	"github.com/evergreenfarmers/storefront/pkg/db/models"
	"github.com/evergreenfarmers/storefront/pkg/enums"
	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/validation"
)

// Input is the contact form.
type Input struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"max=20"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// BindForm fills the input from a browser form post.
func (in *Input) BindForm(values url.Values) error {
	in.Name = values.Get("name")
	in.Email = values.Get("email")
	in.Phone = values.Get("phone")
	in.Subject = values.Get("subject")
	in.Message = values.Get("message")
	return nil
}

// Service stores contact form submissions for staff to read.
type Service interface {
	Submit(ctx context.Context, input Input) (*models.ContactMessage, error)
}

type service struct {
	db   *gorm.DB
	logg *logger.Logger
}

func NewService(db *gorm.DB, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{db: db, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, input Input) (*models.ContactMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	input.Message = strings.TrimSpace(input.Message)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	subject, err := enums.ParseContactSubject(input.Subject)
	if err != nil {
		msg := "subject must be one of the listed topics"
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, msg).
			WithDetails(map[string]string{"subject": msg})
	}

	msg := &models.ContactMessage{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Subject: subject,
		Message: input.Message,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save contact message")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"contact_id": msg.ID.String(),
		"subject":    subject.String(),
	}), "contact.received")
	return msg, nil
}

package validators

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/validation"
)

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=100"`
}

func (s *subscribeRequest) BindForm(values url.Values) error {
	s.Email = values.Get("email")
	s.Name = values.Get("name")
	return nil
}

func TestDecodeRequestJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/newsletter/subscribe/", strings.NewReader(`{"email":"farmer@example.com","name":"Amina"}`))
	req.Header.Set("Content-Type", "application/json")

	var body subscribeRequest
	require.NoError(t, DecodeRequest(req, &body))
	assert.Equal(t, "farmer@example.com", body.Email)
	assert.True(t, WantsJSON(req))
}

func TestDecodeRequestRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","admin":true}`))
	req.Header.Set("Content-Type", "application/json")

	var body subscribeRequest
	err := DecodeRequest(req, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidInput))
}

func TestDecodeRequestForm(t *testing.T) {
	form := url.Values{"email": {"not-an-email"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body subscribeRequest
	err := DecodeRequest(req, &body)
	require.Error(t, err)
	assert.Contains(t, validation.FieldErrors(err), "email")
	assert.False(t, WantsJSON(req))

	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	assert.True(t, WantsJSON(req))
}

func TestQueryInt(t *testing.T) {
	values := url.Values{"rating": {" 4 "}, "page": {"x"}, "stars": {"6"}}
	assert.Equal(t, 4, QueryInt(values, "rating", 0, 1, 5))
	assert.Equal(t, 1, QueryInt(values, "page", 1, 1, 100))
	assert.Equal(t, 0, QueryInt(values, "stars", 0, 1, 5))
	assert.Equal(t, 7, QueryInt(values, "missing", 7, 1, 10))
}

func TestFormInt(t *testing.T) {
	got, err := FormInt("", 1, "quantity")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = FormInt("two", 1, "quantity")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidInput))
}

func TestParseUUIDParam(t *testing.T) {
	_, err := ParseUUIDParam("42", "product")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSearchTerm(t *testing.T) {
	assert.Equal(t, "maize seed", SearchTerm("  maize \t  seed  "))
	assert.Equal(t, "", SearchTerm("   "))

	assert.Equal(t, "café", SearchTerm("cafe\u0301"))

	long := strings.Repeat("é", 150)
	assert.Equal(t, strings.Repeat("é", 100), SearchTerm(long))
}

func TestBindRequestSkipsValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":" Farmer@Example.com "}`))

	var body subscribeRequest
	require.NoError(t, BindRequest(req, &body))
	assert.Equal(t, " Farmer@Example.com ", body.Email)
}

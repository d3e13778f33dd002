package validators

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/validation"
)

const maxFormMemory = 1 << 20

// FormBinder is implemented by request types that can also arrive as
// urlencoded or multipart form posts.
type FormBinder interface {
	BindForm(values url.Values) error
}

func DecodeJSONBody(r *http.Request, dest any) error {
	if err := decodeJSON(r, dest); err != nil {
		return err
	}
	return validation.Struct(dest)
}

func decodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil && err != io.EOF {
		return pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, "invalid request body").WithDetails(map[string]string{"body": err.Error()})
	}
	return nil
}

// DecodeRequest binds the body with BindRequest and validates dest.
func DecodeRequest(r *http.Request, dest any) error {
	if err := BindRequest(r, dest); err != nil {
		return err
	}
	return validation.Struct(dest)
}

// BindRequest decodes JSON bodies, falling back to form values for browser
// form posts when dest implements FormBinder. It does not validate, for
// services that normalize input before checking it.
func BindRequest(r *http.Request, dest any) error {
	binder, ok := dest.(FormBinder)
	if IsJSONRequest(r) || !ok {
		return decodeJSON(r, dest)
	}
	if err := parseForm(r); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, "invalid form body")
	}
	return binder.BindForm(r.PostForm)
}

// IsJSONRequest reports whether the body is JSON. An empty content type is
// treated as JSON so API clients need not set it.
func IsJSONRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// WantsJSON reports whether the caller expects a JSON reply rather than a
// redirect: AJAX requests, JSON bodies, or an Accept header naming JSON.
func WantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if r.Header.Get("Content-Type") != "" && IsJSONRequest(r) {
		return true
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return IsJSONRequest(r)
	}
	for _, part := range splitAccept(accept) {
		if part == "application/json" {
			return true
		}
	}
	return false
}

func splitAccept(header string) []string {
	var out []string
	for _, raw := range splitComma(header) {
		mediaType, _, err := mime.ParseMediaType(raw)
		if err == nil {
			out = append(out, mediaType)
		}
	}
	return out
}

func parseForm(r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(ct)
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteJSON writes payload without an envelope, for endpoints whose shape is
// consumed directly by storefront scripts.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

// WriteFormErrors answers a rejected form submission with 400 and a field map.
func WriteFormErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	writeJSON(w, http.StatusBadRequest, types.FormErrorsResponse{Success: false, Errors: fieldErrors})
}

// WriteCartAction answers a cart mutation. A non-nil err produces a failure
// payload with the status its code maps to.
func WriteCartAction(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error, result types.CartActionResponse) {
	if err == nil {
		result.Success = true
		writeJSON(w, http.StatusOK, result)
		return
	}
	typed, meta := classify(err)
	logError(ctx, logg, err, typed, meta)
	result.Success = false
	result.Message = publicMessage(typed, meta)
	result.Code = string(typed.Code())
	writeJSON(w, meta.HTTPStatus, result)
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, meta := classify(err)

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: publicMessage(typed, meta),
		},
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	logError(ctx, logg, err, typed, meta)
	writeJSON(w, meta.HTTPStatus, payload)
}

func classify(err error) (*pkgerrors.Error, pkgerrors.Metadata) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	return typed, pkgerrors.MetadataFor(typed.Code())
}

// publicMessage exposes the service message only for caller-side errors;
// internal failures always use the generic text.
func publicMessage(typed *pkgerrors.Error, meta pkgerrors.Metadata) string {
	if meta.Expected {
		if m := typed.Message(); m != "" {
			return m
		}
	}
	return meta.PublicMessage
}

func logError(ctx context.Context, logg *logger.Logger, err error, typed *pkgerrors.Error, meta pkgerrors.Metadata) {
	if logg == nil {
		return
	}
	if meta.Expected {
		ctx = logg.WithFields(ctx, map[string]any{
			"error_code": string(typed.Code()),
			"error":      typed.Message(),
		})
		logg.Warn(ctx, "request.rejected")
		return
	}
	ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
	logg.Error(ctx, "request.error", err)
}

// writeJSON encodes before touching the status line so an unencodable payload
// becomes a clean 500 rather than a truncated body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		zlog.Error().Err(err).Str("payload", fmt.Sprintf("%T", payload)).Msg("response.encode_failed")
		status = http.StatusInternalServerError
		body = []byte(`{"error":{"code":"INTERNAL_ERROR","message":"something went wrong, please try again"}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

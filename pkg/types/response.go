package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// CartActionResponse is returned by the AJAX cart mutations.
type CartActionResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	CartTotal  int    `json:"cart_total"`
	CartAmount string `json:"cart_amount"`
	Code       string `json:"code,omitempty"`
}

// FormErrorsResponse carries per-field validation messages for form-style endpoints.
type FormErrorsResponse struct {
	Success bool              `json:"success"`
	Errors  map[string]string `json:"errors"`
}

// MessageResponse is the minimal acknowledgement used by newsletter and contact endpoints.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

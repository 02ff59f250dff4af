package helpers

import (
	"encoding/json"
	"net/http"
)

// Errores estándar de la API. Los códigos siguen la taxonomía OAuth donde
// aplica (invalid_request, unauthorized_client, ...) más los propios del
// middleware Bearer y del store.
var (
	ErrInvalidJSON        = &HTTPError{Code: "invalid_json", Message: "Invalid JSON format", Status: http.StatusBadRequest}
	ErrInvalidRequest     = &HTTPError{Code: "invalid_request", Message: "Malformed or missing parameters", Status: http.StatusBadRequest}
	ErrUnauthorizedClient = &HTTPError{Code: "unauthorized_client", Message: "Client not authorized", Status: http.StatusUnauthorized}
	ErrInvalidCredentials = &HTTPError{Code: "invalid_credentials", Message: "Invalid email or password", Status: http.StatusUnauthorized}
	ErrMissingToken       = &HTTPError{Code: "missing_token", Message: "Bearer token not provided", Status: http.StatusUnauthorized}
	ErrTokenExpired       = &HTTPError{Code: "token_expired", Message: "Access token expired", Status: http.StatusUnauthorized}
	ErrInvalidToken       = &HTTPError{Code: "invalid_token", Message: "Access token invalid", Status: http.StatusUnauthorized}
	ErrUserNotFound       = &HTTPError{Code: "user_not_found", Message: "User no longer exists", Status: http.StatusUnauthorized}
	ErrMethodNotAllowed   = &HTTPError{Code: "method_not_allowed", Message: "Method not allowed", Status: http.StatusMethodNotAllowed}
	ErrNotFound           = &HTTPError{Code: "not_found", Message: "Not found", Status: http.StatusNotFound}
	ErrTooManyRequests    = &HTTPError{Code: "too_many_requests", Message: "Too many requests", Status: http.StatusTooManyRequests}
	ErrStoreUnavailable   = &HTTPError{Code: "store_unavailable", Message: "Data store unavailable", Status: http.StatusInternalServerError}
	ErrInternal           = &HTTPError{Code: "internal_error", Message: "Internal server error", Status: http.StatusInternalServerError}
)

// HTTPError representa un error estándar de la API.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Status  int    `json:"-"`
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// WithDetail devuelve una copia del error con detalle específico.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	return &HTTPError{Code: e.Code, Message: e.Message, Detail: detail, Status: e.Status}
}

// WriteError escribe el error como JSON en el response writer.
func WriteError(w http.ResponseWriter, err error) {
	httpErr, ok := err.(*HTTPError)
	if !ok {
		httpErr = ErrInternal
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpErr.Status)
	_ = json.NewEncoder(w).Encode(httpErr)
}

// WriteJSON escribe un payload JSON con el status dado.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

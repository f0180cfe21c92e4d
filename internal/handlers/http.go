package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/polydemo/internal/errors"
	"github.com/abrezinsky/polydemo/internal/poll"
	"github.com/abrezinsky/polydemo/internal/services"
	"github.com/abrezinsky/polydemo/internal/widget"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInternalServer    = "INTERNAL_SERVER_ERROR"
	ErrCodeNotActive         = "NOT_ACTIVE"
	ErrCodeAlreadyVoted      = "ALREADY_VOTED"
	ErrCodeInvalidOption     = "INVALID_OPTION"
	ErrCodeWidgetNotFound    = "WIDGET_NOT_FOUND"
	ErrCodeWidgetUnmounted   = "WIDGET_UNMOUNTED"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	log.Printf("Internal error: %v", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondDeleted writes a 204 No Content response
func respondDeleted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*APIError); ok {
		respondJSON(w, apiErr.Status, apiErr)
		return
	}
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// parseIntParam extracts and parses an integer URL parameter
func parseIntParam(r *http.Request, name string) (int, error) {
	param := chi.URLParam(r, name)
	if param == "" {
		return 0, BadRequest("Missing " + name + " parameter")
	}
	id, err := strconv.Atoi(param)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return id, nil
}

// parseIntQuery parses an optional integer query parameter
func parseIntQuery(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return n, nil
}

// ToAPIError converts service and engine errors to appropriate API errors
func ToAPIError(err error) *APIError {
	var voteErr *poll.VoteError
	if stderrors.As(err, &voteErr) {
		switch voteErr.Kind {
		case poll.NotActive:
			return NewAPIError(http.StatusConflict, ErrCodeNotActive, voteErr.Error())
		case poll.AlreadyVoted:
			return NewAPIError(http.StatusConflict, ErrCodeAlreadyVoted, voteErr.Error())
		default:
			return NewAPIError(http.StatusBadRequest, ErrCodeInvalidOption, voteErr.Error())
		}
	}
	if stderrors.Is(err, widget.ErrUnmounted) {
		return NewAPIError(http.StatusGone, ErrCodeWidgetUnmounted, err.Error())
	}

	var validationErr *poll.ValidationError
	if stderrors.As(err, &validationErr) {
		return NewAPIError(http.StatusBadRequest, ErrCodeValidation, validationErr.Error())
	}
	var settingErr *services.InvalidSettingError
	if stderrors.As(err, &settingErr) {
		return NewAPIError(http.StatusBadRequest, ErrCodeValidation, settingErr.Error())
	}

	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return NewAPIError(http.StatusBadRequest, ErrCodeValidation, appErr.Message)
		case errors.ErrConflict:
			return Conflict(appErr.Message)
		case errors.ErrUnavailable:
			return NewAPIError(http.StatusBadGateway, ErrCodeSourceUnavailable, appErr.Message)
		default:
			return InternalError(err)
		}
	}

	if svcErr, ok := err.(*services.ServiceError); ok {
		switch svcErr {
		case services.ErrWidgetNotFound:
			return NewAPIError(http.StatusNotFound, ErrCodeWidgetNotFound, svcErr.Message)
		case services.ErrBaseURLNotSet:
			return Conflict(svcErr.Message)
		default:
			return BadRequest(svcErr.Message)
		}
	}

	return InternalError(err)
}

package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/gameaccounts/internal/model"
	"github.com/mcoot/gameaccounts/internal/services/identity"
	"github.com/mcoot/gameaccounts/internal/services/oauth"
	"github.com/mcoot/gameaccounts/internal/services/session"
	"github.com/mcoot/gameaccounts/internal/storage"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeAccountNotFound       = "ACCOUNT_NOT_FOUND"
	CodeNicknameTaken         = "NICKNAME_TAKEN"
	CodeAddressUsed           = "ADDRESS_ALREADY_REGISTERED"
	CodeIdentityLinked        = "IDENTITY_ALREADY_LINKED"
	CodeInvalidNickname       = "INVALID_NICKNAME"
	CodeInvalidEmail          = "INVALID_EMAIL"
	CodeInvalidPassword       = "INVALID_PASSWORD"
	CodeInvalidOutcome        = "INVALID_OUTCOME"
	CodeFriendSelf            = "FRIEND_SELF"
	CodeFriendExists          = "FRIEND_EXISTS"
	CodeFriendNotFound        = "FRIEND_NOT_FOUND"
	CodeFriendRequestNotFound = "FRIEND_REQUEST_NOT_FOUND"
	CodeUnknownProvider       = "UNKNOWN_PROVIDER"
	CodeStoreUnavailable      = "STORE_UNAVAILABLE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Store failures come first: nothing was written and the client may retry
	case errors.Is(err, storage.ErrUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Account store unavailable, try again later"}}

	// Map account errors
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeAccountNotFound, "Account not found"}}
	case errors.Is(err, model.ErrDuplicateNickname):
		return &httpError{http.StatusConflict, APIError{CodeNicknameTaken, "Nickname already taken"}}
	case errors.Is(err, model.ErrDuplicateIP):
		return &httpError{http.StatusConflict, APIError{CodeAddressUsed, "An account was already registered from this address"}}
	case errors.Is(err, model.ErrDuplicateFederation):
		return &httpError{http.StatusConflict, APIError{CodeIdentityLinked, "Provider identity already linked"}}

	// Map input errors
	case errors.Is(err, model.ErrInvalidNickname), errors.Is(err, model.ErrReservedNickname):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidNickname, err.Error()}}
	case errors.Is(err, model.ErrInvalidEmail):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidEmail, "Invalid email address"}}
	case errors.Is(err, model.ErrInvalidPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPassword, "Password must be 8-72 bytes"}}
	case errors.Is(err, model.ErrInvalidOutcome):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidOutcome, "Outcome must be win, loss or draw"}}

	// Map friend errors
	case errors.Is(err, model.ErrFriendSelf):
		return &httpError{http.StatusBadRequest, APIError{CodeFriendSelf, "Cannot add yourself as a friend"}}
	case errors.Is(err, model.ErrFriendExists):
		return &httpError{http.StatusConflict, APIError{CodeFriendExists, "Already in friend list"}}
	case errors.Is(err, model.ErrFriendNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeFriendNotFound, "Friend not found"}}
	case errors.Is(err, model.ErrFriendRequestNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeFriendRequestNotFound, "No pending friend request"}}

	// Map auth errors
	case errors.Is(err, identity.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid nickname or password"}}
	case errors.Is(err, session.ErrUnauthenticated):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, oauth.ErrUnknownProvider):
		return &httpError{http.StatusNotFound, APIError{CodeUnknownProvider, "Unknown provider"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

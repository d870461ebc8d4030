package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fitkeeper/internal/server/services"
	validation "github.com/go-ozzo/ozzo-validation"
)

// HTTPError is an error with a status code and a client-safe message.
type HTTPError struct {
	Code    int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func newHTTPError(code int, message string, cause error) *HTTPError {
	return &HTTPError{Code: code, Message: message, Err: cause}
}

// Client-facing messages.
const (
	msgCredentials      = "Could not validate credentials"
	msgBadLogin         = "Incorrect email or password"
	msgMembershipAbsent = "Membership not found"
	msgMemberAbsent     = "Member not found"
	msgUserAbsent       = "User not found"
	msgDuplicateMember  = "Member already exists for this user"
	msgEmailTaken       = "Email already registered"
	msgNoPrivileges     = "Not enough privileges"
	msgInactiveUser     = "Inactive user"
	msgInvalidPeriod    = "membership_start must not be after membership_end"
	msgInvalidPage      = "skip and limit must not be negative"
	msgValidation       = "Validation failed"
	msgTooManyRequests  = "Too many login attempts, try again later"
	msgInternal         = "Internal Server Error"
)

// mappings are checked in order; the more specific error comes first.
var mappings = []struct {
	target  error
	code    int
	message string
}{
	{services.ErrMembershipNotFound, http.StatusNotFound, msgMembershipAbsent},
	{services.ErrAccountNotFound, http.StatusNotFound, msgUserAbsent},
	{common.ErrorNotFound, http.StatusNotFound, "Not found"},
	{services.ErrDuplicateMembership, http.StatusBadRequest, msgDuplicateMember},
	{services.ErrEmailTaken, http.StatusBadRequest, msgEmailTaken},
	{common.ErrorAlreadyExists, http.StatusBadRequest, "Already exists"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, msgCredentials},
	{auth.ErrInactiveUser, http.StatusForbidden, msgInactiveUser},
	{common.ErrorForbidden, http.StatusForbidden, msgNoPrivileges},
	{services.ErrInvalidPeriod, http.StatusUnprocessableEntity, msgInvalidPeriod},
	{services.ErrInvalidPage, http.StatusUnprocessableEntity, msgInvalidPage},
}

// memberNotFound reports a missing membership addressed by its id under
// /admin/members as "Member not found".
func memberNotFound(err error) error {
	if errors.Is(err, services.ErrMembershipNotFound) {
		return newHTTPError(http.StatusNotFound, msgMemberAbsent, err)
	}
	return err
}

// toHTTPError maps any error returned by a handler onto a response.
// Anything unrecognized becomes a 500 with a generic message.
func toHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if errors.Is(err, common.ErrorValidation) {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return validationHTTPError(verrs, err)
		}
	}

	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return newHTTPError(m.code, m.message, err)
		}
	}

	if errors.Is(err, common.ErrorValidation) {
		return newHTTPError(http.StatusUnprocessableEntity, msgValidation, err)
	}

	return newHTTPError(http.StatusInternalServerError, msgInternal, err)
}

func validationHTTPError(verrs validation.Errors, cause error) *HTTPError {
	fields := make(map[string]string, len(verrs))
	for k, v := range verrs {
		fields[k] = v.Error()
	}
	return &HTTPError{
		Code:    http.StatusUnprocessableEntity,
		Message: msgValidation,
		Fields:  fields,
		Err:     cause,
	}
}

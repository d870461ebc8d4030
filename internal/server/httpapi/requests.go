package httpapi

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest accepts JSON {"email","password"} or an OAuth2-style
// password form with username/password.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func parseLogin(r *http.Request) (loginRequest, error) {
	var req loginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get(headerContentType))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return req, newHTTPError(http.StatusUnprocessableEntity, "Invalid form body", err)
		}
		req.Email = r.PostFormValue("username")
		if req.Email == "" {
			req.Email = r.PostFormValue("email")
		}
		req.Password = r.PostFormValue("password")
	default:
		if err := decodeJSON(r, &req); err != nil {
			return req, err
		}
	}

	if err := req.Validate(); err != nil {
		return req, validationErr(err)
	}
	return req, nil
}

type createMembershipRequest struct {
	UserID *int64     `json:"user_id"`
	Status *bool      `json:"membership_status"`
	Start  *time.Time `json:"membership_start"`
	End    *time.Time `json:"membership_end"`
}

func (r createMembershipRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Start, validation.Required),
		validation.Field(&r.End, validation.Required),
	)
}

// status defaults to active when omitted.
func (r createMembershipRequest) status() bool {
	if r.Status == nil {
		return true
	}
	return *r.Status
}

type renewResponse struct {
	Message    string    `json:"message"`
	NewEndDate time.Time `json:"new_end_date"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type patchRequest = models.MembershipPatch

func validationErr(err error) error {
	if verrs, ok := err.(validation.Errors); ok {
		return validationHTTPError(verrs, err)
	}
	return newHTTPError(http.StatusUnprocessableEntity, msgValidation, err)
}

// queryInt reads a non-negative integer query parameter, or def if absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &HTTPError{
			Code:    http.StatusUnprocessableEntity,
			Message: msgValidation,
			Fields:  map[string]string{name: "must be an integer"},
			Err:     common.ErrorValidation,
		}
	}
	return v, nil
}

// pathID reads a positive integer path parameter.
func pathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &HTTPError{
			Code:    http.StatusUnprocessableEntity,
			Message: msgValidation,
			Fields:  map[string]string{"id": "must be a positive integer"},
			Err:     common.ErrorValidation,
		}
	}
	return id, nil
}

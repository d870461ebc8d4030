package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fitkeeper/internal/server/services"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"membership missing", services.ErrMembershipNotFound, http.StatusNotFound, msgMembershipAbsent},
		{"member missing", memberNotFound(fmt.Errorf("update: %w", services.ErrMembershipNotFound)), http.StatusNotFound, msgMemberAbsent},
		{"account missing", fmt.Errorf("ctx: %w", services.ErrAccountNotFound), http.StatusNotFound, msgUserAbsent},
		{"duplicate", services.ErrDuplicateMembership, http.StatusBadRequest, msgDuplicateMember},
		{"email taken", services.ErrEmailTaken, http.StatusBadRequest, msgEmailTaken},
		{"unauthorized", common.ErrorUnauthorized, http.StatusUnauthorized, msgCredentials},
		{"not admin", auth.ErrNotEnoughPrivileges, http.StatusForbidden, msgNoPrivileges},
		{"inactive", auth.ErrInactiveUser, http.StatusForbidden, msgInactiveUser},
		{"bad period", services.ErrInvalidPeriod, http.StatusUnprocessableEntity, msgInvalidPeriod},
		{"bad page", services.ErrInvalidPage, http.StatusUnprocessableEntity, msgInvalidPage},
		{"bare validation", common.ErrorValidation, http.StatusUnprocessableEntity, msgValidation},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, msgInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toHTTPError(tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.msg, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMemberNotFound_LeavesOtherErrors(t *testing.T) {
	err := services.ErrInvalidPeriod
	assert.Equal(t, err, memberNotFound(err))
}

func TestToHTTPError_ValidationFields(t *testing.T) {
	verrs := validation.Errors{
		"email":    errors.New("must be a valid email address"),
		"password": errors.New("cannot be blank"),
	}

	got := toHTTPError(fmt.Errorf("%w: %w", common.ErrorValidation, verrs))

	assert.Equal(t, http.StatusUnprocessableEntity, got.Code)
	assert.Equal(t, map[string]string{
		"email":    "must be a valid email address",
		"password": "cannot be blank",
	}, got.Fields)
}

func TestToHTTPError_PassesThroughHTTPError(t *testing.T) {
	in := newHTTPError(http.StatusTeapot, "short and stout", nil)
	assert.Same(t, in, toHTTPError(fmt.Errorf("wrapped: %w", in)))
}

func TestInternalErrorsDoNotLeakCause(t *testing.T) {
	got := toHTTPError(errors.New("pq: password authentication failed for user fitkeeper"))
	assert.Equal(t, msgInternal, got.Message)
	assert.Nil(t, got.Fields)
}

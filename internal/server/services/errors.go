package services

import (
	"fmt"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
)

// Domain errors. Each wraps one of the common sentinels so the transport can
// map it with errors.Is.
var (
	ErrAccountNotFound     = fmt.Errorf("user %w", common.ErrorNotFound)
	ErrMembershipNotFound  = fmt.Errorf("membership %w", common.ErrorNotFound)
	ErrDuplicateMembership = fmt.Errorf("membership %w", common.ErrorAlreadyExists)
	ErrEmailTaken          = fmt.Errorf("email %w", common.ErrorAlreadyExists)
	ErrInvalidPeriod       = fmt.Errorf("%w: membership_start is after membership_end", common.ErrorValidation)
	ErrInvalidPage         = fmt.Errorf("%w: skip and limit must not be negative", common.ErrorValidation)
)

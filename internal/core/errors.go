package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// NotFoundError reports an unknown session, sale or cost id. Recoverable
// by the caller; the request-handling layer maps it to a client error.
type NotFoundError struct {
	Kind string // "session", "sale" or "cost"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// InvalidArgumentError reports an out-of-range or malformed input. Never
// retried.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConsistencyError reports that the allocations of a cost sum to more than
// the cost's amount beyond tolerance. It indicates graph corruption and is
// fatal to the operation; the engine never clamps the value silently.
type ConsistencyError struct {
	CostID    string
	Allocated decimal.Decimal
	Amount    decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("cost %q allocation %s exceeds amount %s",
		e.CostID, e.Allocated.StringFixed(4), e.Amount.StringFixed(4))
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidArgument reports whether err wraps an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var ia *InvalidArgumentError
	return errors.As(err, &ia)
}

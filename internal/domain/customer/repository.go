package customer

import (
	"context"
	"time"

	"crm-engine/internal/pkg/apperrors"
)

var (
	// ErrNotFound is returned when no customer matches the lookup.
	ErrNotFound = apperrors.ErrNotFound

	// ErrEmailTaken is returned when another customer already owns the email.
	ErrEmailTaken = apperrors.ErrEmailTaken
)

// ListFilter narrows FindAll results. Zero values mean no constraint.
type ListFilter struct {
	Name          string
	Email         string
	PhonePrefix   string
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

type CustomerRepository interface {
	Save(ctx context.Context, cust *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindByEmail(ctx context.Context, email string) (*Customer, error)

	FindAll(ctx context.Context, filter ListFilter) ([]*Customer, error)

	Delete(ctx context.Context, customerID int64) error

	// DeleteInactiveBefore removes every customer whose latest order is
	// dated before cutoff, customers with no orders included, and reports
	// how many rows were deleted.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CountInactiveBefore counts the customers DeleteInactiveBefore would
	// remove without deleting them.
	CountInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)

	CountAll(ctx context.Context) (int64, error)
}

package customer

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"crm-engine/internal/pkg/apperrors"
)

// DefaultInactiveThreshold is how long a customer may go without placing
// an order before the purge considers them inactive.
const DefaultInactiveThreshold = 365 * 24 * time.Hour

// phonePattern accepts an optional "+" and country digit followed by
// 9 to 15 digits, e.g. "+1234567890".
var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

type Customer struct {
	CustomerID int64     `json:"customerId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewCustomer(name, email, phone string) *Customer {
	now := time.Now()
	return &Customer{
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperrors.NewValidationError("name", "name cannot be empty")
	}
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return apperrors.NewValidationError("email", "email cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.NewValidationError("email", fmt.Sprintf("'%s' is not a valid email address", email))
	}
	if c.Phone != "" && !phonePattern.MatchString(c.Phone) {
		return apperrors.NewValidationError("phone", "phone number must be in format: '+1234567890', up to 15 digits")
	}
	return nil
}

package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crm-engine/internal/domain/customer"
)

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (r *CreateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("email cannot be empty")
	}

	return nil
}

type BulkCreateCustomersRequest struct {
	Customers []CreateCustomerRequest `json:"customers"`
}

func (r *BulkCreateCustomersRequest) Validate() error {
	if len(r.Customers) == 0 {
		return fmt.Errorf("customers cannot be empty")
	}
	return nil
}

// Inputs converts the request rows into service inputs. Row level
// validation happens in the service so one bad row does not reject
// the whole batch.
func (r *BulkCreateCustomersRequest) Inputs() []customer.CreateCustomerInput {
	inputs := make([]customer.CreateCustomerInput, len(r.Customers))
	for i, row := range r.Customers {
		inputs[i] = customer.CreateCustomerInput{
			Name:  row.Name,
			Email: row.Email,
			Phone: row.Phone,
		}
	}
	return inputs
}

type UpdateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (r *UpdateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("email cannot be empty")
	}
	return nil
}

type CustomerResponse struct {
	CustomerID string    `json:"customerId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {

		return CustomerResponse{}
	}

	return CustomerResponse{
		CustomerID: strconv.FormatInt(cust.CustomerID, 10),
		Name:       cust.Name,
		Email:      cust.Email,
		Phone:      cust.Phone,
		CreatedAt:  cust.CreatedAt,
		UpdatedAt:  cust.UpdatedAt,
	}
}

// BulkCreateCustomersResponse reports partial success: customers that were
// created plus one message per rejected row.
type BulkCreateCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
	Errors    []string           `json:"errors,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

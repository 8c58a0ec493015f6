package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"crm-engine/internal/event"
	"crm-engine/internal/infrastructure/monitoring"
	"crm-engine/internal/pkg/apperrors"
)

const (
	inputValidationPassed = "Input validation passed"
	customerNotFound      = "Customer not found by repository"
)

// CreateCustomerInput is one row of a bulk import.
type CreateCustomerInput struct {
	Name  string
	Email string
	Phone string
}

type CustomerService interface {
	CreateNewCustomer(ctx context.Context, name, email, phone string) (*Customer, error)
	BulkCreateCustomers(ctx context.Context, inputs []CreateCustomerInput) ([]*Customer, []string, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	ListCustomers(ctx context.Context, filter ListFilter) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, name, email, phone string) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
	PurgeInactive(ctx context.Context, now time.Time, threshold time.Duration) (int64, error)
	CountInactive(ctx context.Context, now time.Time, threshold time.Duration) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be discarded")
		eventPublisher = event.NewNoopPublisher()
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) publishCreatedEvent(ctx context.Context, cust *Customer) {
	if cust == nil {
		s.logger.ErrorContext(ctx, "Attempted to publish creation event for nil customer")
		return
	}
	createdEvent := event.CustomerCreatedEvent{
		CustomerID: cust.CustomerID,
		Name:       cust.Name,
		Email:      cust.Email,
		Timestamp:  time.Now(),
	}
	if err := s.pub.PublishCustomerCreated(ctx, createdEvent); err != nil {
		s.logger.ErrorContext(ctx, "Customer created, but FAILED to publish creation event",
			slog.Int64("customerID", cust.CustomerID), slog.Any("error", err))
	} else {
		s.logger.InfoContext(ctx, "Successfully published customer creation event",
			slog.Int64("customerID", cust.CustomerID))
	}
}

func (s *customerService) CreateNewCustomer(ctx context.Context, name, email, phone string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	cust := NewCustomer(name, email, phone)
	if err := cust.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Validation failed for new customer", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, inputValidationPassed)

	s.logger.InfoContext(ctx, "Calling repository FindByEmail to check for duplicates", slog.String("email", cust.Email))
	existing, err := s.repo.FindByEmail(ctx, cust.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.ErrorContext(ctx, "Repository error checking for duplicate email", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check email for new customer: %w", err)
	}
	if existing != nil {
		s.logger.WarnContext(ctx, "Business rule failed: email already registered",
			slog.Int64("existing_customerID", existing.CustomerID))
		return nil, ErrEmailTaken
	}

	s.logger.InfoContext(ctx, "Calling repository Save")
	if err := s.repo.Save(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	monitoring.RecordCustomerCreated()

	s.logger.InfoContext(ctx, "Successfully saved new customer, publishing creation event",
		slog.Int64("customerID", cust.CustomerID))
	s.publishCreatedEvent(ctx, cust)

	s.logger.InfoContext(ctx, "Successfully created new customer", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

func (s *customerService) BulkCreateCustomers(ctx context.Context, inputs []CreateCustomerInput) ([]*Customer, []string, error) {
	s.logger.InfoContext(ctx, "Attempting to bulk create customers", slog.Int("rows", len(inputs)))

	if len(inputs) == 0 {
		s.logger.WarnContext(ctx, "Validation failed: no customer rows provided")
		return nil, nil, fmt.Errorf("%w: no customer rows provided", apperrors.ErrInsufficientData)
	}

	created := make([]*Customer, 0, len(inputs))
	var rowErrors []string
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			s.logger.WarnContext(ctx, "Bulk create aborted", slog.Int("processed", i), slog.Any("error", err))
			return created, rowErrors, fmt.Errorf("bulk create aborted after %d rows: %w", i, err)
		}

		cust, err := s.CreateNewCustomer(ctx, input.Name, input.Email, input.Phone)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		created = append(created, cust)
	}

	s.logger.InfoContext(ctx, "Finished bulk create",
		slog.Int("created", len(created)), slog.Int("failed", len(rowErrors)))
	return created, rowErrors, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID")

	s.logger.InfoContext(ctx, "Calling repository FindByID")
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFound)

			return nil, ErrNotFound
		}

		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))

		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customer")
	return cust, nil
}

func (s *customerService) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by email")

	email = strings.TrimSpace(email)
	if email == "" {
		s.logger.WarnContext(ctx, "Validation failed: email is empty")
		return nil, apperrors.NewValidationError("email", "email cannot be empty")
	}

	s.logger.InfoContext(ctx, "Calling repository FindByEmail")
	cust, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}

		s.logger.ErrorContext(ctx, "Repository error finding customer by email", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customer", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter ListFilter) ([]*Customer, error) {

	s.logger.InfoContext(ctx, "Attempting to list customers")

	s.logger.InfoContext(ctx, "Calling repository FindAll")
	customers, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, name, email, phone string) (*Customer, error) {

	s.logger.InfoContext(ctx, "Attempting to update customer", slog.Int64("customerID", customerID))

	s.logger.InfoContext(ctx, "Calling repository FindByID to get current customer data")
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository for update")
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d to update: %w", customerID, err)
	}

	updated := *cust
	updated.Name = strings.TrimSpace(name)
	updated.Email = strings.TrimSpace(email)
	updated.Phone = strings.TrimSpace(phone)
	if err := updated.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Validation failed for customer update", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, inputValidationPassed)

	if updated.Email != cust.Email {
		s.logger.InfoContext(ctx, "Calling repository FindByEmail to check new email", slog.String("email", updated.Email))
		existing, err := s.repo.FindByEmail(ctx, updated.Email)
		if err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.ErrorContext(ctx, "Repository error checking email for update", slog.Any("error", err))
			return nil, fmt.Errorf("failed to check email for customer %d: %w", customerID, err)
		}
		if existing != nil && existing.CustomerID != customerID {
			s.logger.WarnContext(ctx, "Business rule failed: email already registered",
				slog.Int64("existing_customerID", existing.CustomerID))
			return nil, ErrEmailTaken
		}
	}

	if updated.Name == cust.Name && updated.Email == cust.Email && updated.Phone == cust.Phone {
		s.logger.InfoContext(ctx, "No customer change needed, skipping save")
		return cust, nil
	}

	s.logger.InfoContext(ctx, "Calling repository Save to persist customer change")
	if err := s.repo.Save(ctx, &updated); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))

		if errors.Is(err, ErrNotFound) {
			s.logger.ErrorContext(ctx, "Customer disappeared before save completed")
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to save updated customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully updated customer")
	return &updated, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {

	s.logger.InfoContext(ctx, "Attempting to delete customer", slog.Int64("customerID", customerID))

	s.logger.InfoContext(ctx, "Calling repository Delete")
	err := s.repo.Delete(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFound)
			return ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully deleted customer")
	return nil
}

// PurgeInactive deletes every customer whose latest order is older than
// threshold relative to now, customers with no orders included. A
// threshold of zero or less falls back to DefaultInactiveThreshold. It
// returns the number of customers removed.
func (s *customerService) PurgeInactive(ctx context.Context, now time.Time, threshold time.Duration) (int64, error) {
	if threshold <= 0 {
		s.logger.InfoContext(ctx, "No inactivity threshold provided, using default",
			slog.Duration("default", DefaultInactiveThreshold))
		threshold = DefaultInactiveThreshold
	}
	cutoff := now.Add(-threshold)

	s.logger.InfoContext(ctx, "Attempting to purge inactive customers", slog.Time("cutoff", cutoff))

	s.logger.InfoContext(ctx, "Calling repository DeleteInactiveBefore")
	deleted, err := s.repo.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error purging inactive customers", slog.Any("error", err))
		return 0, fmt.Errorf("failed to purge inactive customers: %w", err)
	}

	monitoring.RecordCustomersPurged(deleted)

	purgedEvent := event.CustomersPurgedEvent{
		DeletedCount: deleted,
		Cutoff:       cutoff,
		Timestamp:    time.Now(),
	}
	if pubErr := s.pub.PublishCustomersPurged(ctx, purgedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Inactive customers purged, but FAILED to publish purge event", slog.Any("error", pubErr))
	} else {
		s.logger.InfoContext(ctx, "Successfully published customer purge event")
	}

	s.logger.InfoContext(ctx, "Successfully purged inactive customers", slog.Int64("deleted", deleted))
	return deleted, nil
}

// CountInactive reports how many customers PurgeInactive would delete for
// the same now and threshold, without deleting anything.
func (s *customerService) CountInactive(ctx context.Context, now time.Time, threshold time.Duration) (int64, error) {
	if threshold <= 0 {
		threshold = DefaultInactiveThreshold
	}
	cutoff := now.Add(-threshold)

	s.logger.InfoContext(ctx, "Attempting to count inactive customers", slog.Time("cutoff", cutoff))

	s.logger.InfoContext(ctx, "Calling repository CountInactiveBefore")
	count, err := s.repo.CountInactiveBefore(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error counting inactive customers", slog.Any("error", err))
		return 0, fmt.Errorf("failed to count inactive customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully counted inactive customers", slog.Int64("count", count))
	return count, nil
}

func (s *customerService) CountCustomers(ctx context.Context) (int64, error) {
	s.logger.InfoContext(ctx, "Calling repository CountAll")
	count, err := s.repo.CountAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error counting customers", slog.Any("error", err))
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

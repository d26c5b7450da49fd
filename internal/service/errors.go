package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a staff member lacks permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCustomerNotFound is returned when a customer is not found
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrCustomerHasOrders is returned when deleting a customer with order history
	ErrCustomerHasOrders = errors.New("customer has order history and cannot be deleted")

	// ErrServiceNotFound is returned when a catalog service is not found
	ErrServiceNotFound = errors.New("service not found")

	// ErrAddonNotFound is returned when a catalog addon is not found
	ErrAddonNotFound = errors.New("addon not found")

	// ErrBookingNotFound is returned when a booking is not found
	ErrBookingNotFound = errors.New("booking not found")

	// ErrQuoteNotFound is returned when a quote is not found
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrQuoteExists is returned when a booking already has a quote
	ErrQuoteExists = errors.New("booking already has a quote")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvoiceNotFound is returned when an invoice is not found
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrInvoiceExists is returned when the source already has an invoice
	ErrInvoiceExists = errors.New("source already has an invoice")

	// ErrStaffNotFound is returned when a staff member is not found
	ErrStaffNotFound = errors.New("staff member not found")

	// ErrInvalidCredentials is returned on failed login
	ErrInvalidCredentials = errors.New("invalid credentials")
)

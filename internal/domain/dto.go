package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings, money is whole SEK.

type CustomerDTO struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Type       CustomerType `json:"type"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Address    string       `json:"address,omitempty"`
	PostalCode string       `json:"postalCode,omitempty"`
	City       string       `json:"city,omitempty"`
	OrgNumber  string       `json:"orgNumber,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  string       `json:"createdAt"` // ISO 8601
	UpdatedAt  string       `json:"updatedAt"` // ISO 8601
}

type ServiceDTO struct {
	ID          uuid.UUID       `json:"id"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	BasePrice   int64           `json:"basePrice"`
	PriceUnit   string          `json:"priceUnit,omitempty"`
	PriceType   PriceType       `json:"priceType"`
	RotEligible bool            `json:"rotEligible"`
	RutEligible bool            `json:"rutEligible"`
	Location    ServiceLocation `json:"location"`
	LaborShare  float64         `json:"laborShare"`
	SortOrder   int             `json:"sortOrder"`
	IsActive    bool            `json:"isActive"`
	Addons      []ServiceAddonDTO `json:"addons,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

type ServiceAddonDTO struct {
	ID          uuid.UUID `json:"id"`
	ServiceID   uuid.UUID `json:"serviceId"`
	Title       string    `json:"title"`
	Price       int64     `json:"price"`
	PriceUnit   string    `json:"priceUnit,omitempty"`
	RotEligible bool      `json:"rotEligible"`
	RutEligible bool      `json:"rutEligible"`
	Icon        string    `json:"icon,omitempty"`
	IsActive    bool      `json:"isActive"`
}

type BookingDTO struct {
	ID           uuid.UUID         `json:"id"`
	ServiceID    *uuid.UUID        `json:"serviceId,omitempty"`
	ServiceTitle string            `json:"serviceTitle,omitempty"`
	CustomerID   *uuid.UUID        `json:"customerId,omitempty"`
	ContactName  string            `json:"contactName"`
	ContactEmail string            `json:"contactEmail"`
	ContactPhone string            `json:"contactPhone,omitempty"`
	Address      string            `json:"address,omitempty"`
	PostalCode   string            `json:"postalCode,omitempty"`
	City         string            `json:"city,omitempty"`
	Mode         BookingMode       `json:"mode"`
	Description  string            `json:"description,omitempty"`
	PriceType    PriceType         `json:"priceType"`
	HoursEst     float64           `json:"hoursEstimated,omitempty"`
	HourlyRate   int64             `json:"hourlyRate,omitempty"`
	BasePrice    int64             `json:"basePrice"`
	FinalPrice   int64             `json:"finalPrice"`
	RotRutType   *RotRutType       `json:"rotRutType,omitempty"`
	Status       BookingStatus     `json:"status"`
	CreatedBy    CreatedByType     `json:"createdBy"`
	SeenAt       *string           `json:"seenAt,omitempty"`
	Addons       []BookingAddonDTO `json:"addons,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

type BookingAddonDTO struct {
	ID          uuid.UUID `json:"id"`
	AddonID     uuid.UUID `json:"addonId"`
	Title       string    `json:"title"`
	UnitPrice   int64     `json:"unitPrice"`
	Quantity    int       `json:"quantity"`
	RotEligible bool      `json:"rotEligible"`
	RutEligible bool      `json:"rutEligible"`
	Total       int64     `json:"total"`
}

type QuoteDTO struct {
	ID              uuid.UUID          `json:"id"`
	BookingID       uuid.UUID          `json:"bookingId"`
	CustomerID      *uuid.UUID         `json:"customerId,omitempty"`
	CustomerName    string             `json:"customerName,omitempty"`
	QuoteNumber     string             `json:"quoteNumber,omitempty"` // e.g. "Q-2026-014", assigned on first send
	Status          QuoteStatus        `json:"status"`                // includes the derived "expired" projection
	LineItems       []QuoteLineItemDTO `json:"lineItems,omitempty"`
	SubtotalWork    int64              `json:"subtotalWork"`
	SubtotalMat     int64              `json:"subtotalMaterial"`
	RotDeduction    int64              `json:"rotDeduction"`
	Total           int64              `json:"total"`
	RotRutType      *RotRutType        `json:"rotRutType,omitempty"`
	ValidUntil      *string            `json:"validUntil,omitempty"`
	SentAt          *string            `json:"sentAt,omitempty"`
	ViewedAt        *string            `json:"viewedAt,omitempty"`
	AcceptedAt      *string            `json:"acceptedAt,omitempty"`
	AcceptedBy      *AcceptedByType    `json:"acceptedBy,omitempty"`
	SignatureName   string             `json:"signatureName,omitempty"`
	SignatureDate   *string            `json:"signatureDate,omitempty"`
	TermsAccepted   bool               `json:"termsAccepted"`
	ReacceptReqAt   *string            `json:"reacceptRequestedAt,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	CreatedAt       string             `json:"createdAt"`
	UpdatedAt       string             `json:"updatedAt"`
}

type QuoteLineItemDTO struct {
	ID                uuid.UUID    `json:"id"`
	Description       string       `json:"description"`
	Kind              LineItemKind `json:"kind"`
	Quantity          float64      `json:"quantity"`
	UnitPrice         int64        `json:"unitPrice"`
	Total             int64        `json:"total"`
	DeductionEligible bool         `json:"deductionEligible"`
	SortOrder         int          `json:"sortOrder"`
}

type JobDTO struct {
	ID                uuid.UUID          `json:"id"`
	QuoteID           *uuid.UUID         `json:"quoteId,omitempty"`
	BookingID         *uuid.UUID         `json:"bookingId,omitempty"`
	Status            JobStatus          `json:"status"`
	PricingMode       JobPricingMode     `json:"pricingMode"`
	HourlyRate        int64              `json:"hourlyRate,omitempty"`
	FixedPrice        int64              `json:"fixedPrice,omitempty"`
	Assignments       []JobAssignmentDTO `json:"assignments,omitempty"`
	TimeLogs          []TimeLogDTO       `json:"timeLogs,omitempty"`
	MaterialLogs      []MaterialLogDTO   `json:"materialLogs,omitempty"`
	ExpenseLogs       []ExpenseLogDTO    `json:"expenseLogs,omitempty"`
	TotalHours        float64            `json:"totalHours"`
	TotalMaterialCost int64              `json:"totalMaterialCost"`
	TotalExpenses     int64              `json:"totalExpenses"`
	CompletedAt       *string            `json:"completedAt,omitempty"`
	CreatedAt         string             `json:"createdAt"`
	UpdatedAt         string             `json:"updatedAt"`
}

type JobAssignmentDTO struct {
	ID         uuid.UUID `json:"id"`
	WorkerID   string    `json:"workerId"`
	WorkerName string    `json:"workerName,omitempty"`
	AssignedAt string    `json:"assignedAt"`
}

type TimeLogDTO struct {
	ID        uuid.UUID `json:"id"`
	WorkerID  string    `json:"workerId"`
	StartedAt *string   `json:"startedAt,omitempty"`
	EndedAt   *string   `json:"endedAt,omitempty"`
	Hours     float64   `json:"hours"`
	Manual    bool      `json:"manual"`
	Note      string    `json:"note,omitempty"`
	Open      bool      `json:"open"`
	CreatedAt string    `json:"createdAt"`
}

type MaterialLogDTO struct {
	ID        uuid.UUID `json:"id"`
	WorkerID  string    `json:"workerId,omitempty"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	UnitPrice int64     `json:"unitPrice"`
	Total     int64     `json:"total"`
	Supplier  string    `json:"supplier,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type ExpenseLogDTO struct {
	ID        uuid.UUID `json:"id"`
	WorkerID  string    `json:"workerId,omitempty"`
	Category  string    `json:"category"`
	Amount    int64     `json:"amount"`
	Note      string    `json:"note,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

type InvoiceDTO struct {
	ID             uuid.UUID            `json:"id"`
	JobID          *uuid.UUID           `json:"jobId,omitempty"`
	QuoteID        *uuid.UUID           `json:"quoteId,omitempty"`
	CustomerID     *uuid.UUID           `json:"customerId,omitempty"`
	CustomerName   string               `json:"customerName,omitempty"`
	InvoiceNumber  string               `json:"invoiceNumber,omitempty"` // e.g. "F-2026-007", assigned on send
	Status         InvoiceStatus        `json:"status"`                  // includes the derived "overdue" projection
	LineItems      []InvoiceLineItemDTO `json:"lineItems,omitempty"`
	Subtotal       int64                `json:"subtotal"`
	DiscountAmount int64                `json:"discountAmount"`
	VATAmount      int64                `json:"vatAmount"`
	RotAmount      int64                `json:"rotAmount"`
	RutAmount      int64                `json:"rutAmount"`
	TotalAmount    int64                `json:"totalAmount"`
	DueDate        *string              `json:"dueDate,omitempty"`
	SentAt         *string              `json:"sentAt,omitempty"`
	PaidAt         *string              `json:"paidAt,omitempty"`
	AdminNote      string               `json:"adminNote,omitempty"`
	CreatedAt      string               `json:"createdAt"`
	UpdatedAt      string               `json:"updatedAt"`
}

type InvoiceLineItemDTO struct {
	ID          uuid.UUID    `json:"id"`
	Description string       `json:"description"`
	Kind        LineItemKind `json:"kind"`
	Quantity    float64      `json:"quantity"`
	UnitPrice   int64        `json:"unitPrice"`
	Total       int64        `json:"total"`
	SortOrder   int          `json:"sortOrder"`
}

// OrderDTO is a read-side composition of one order's lifecycle documents
type OrderDTO struct {
	Stage    OrderStage   `json:"stage"`
	Booking  *BookingDTO  `json:"booking"`
	Quote    *QuoteDTO    `json:"quote,omitempty"`
	Job      *JobDTO      `json:"job,omitempty"`
	Invoice  *InvoiceDTO  `json:"invoice,omitempty"`
	Customer *CustomerDTO `json:"customer,omitempty"`
}

type ActivityLogDTO struct {
	ID         uuid.UUID          `json:"id"`
	TargetType ActivityTargetType `json:"targetType"`
	TargetID   uuid.UUID          `json:"targetId"`
	Title      string             `json:"title"`
	Body       string             `json:"body,omitempty"`
	OccurredAt string             `json:"occurredAt"`
	ActorID    string             `json:"actorId,omitempty"`
	ActorName  string             `json:"actorName,omitempty"`
}

type StaffDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        StaffRole `json:"role"`
	Phone       string    `json:"phone,omitempty"`
	IsActive    bool      `json:"isActive"`
}

// PaginatedResponse is the standard list envelope
type PaginatedResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PriceBreakdownDTO exposes a pricing computation to the booking wizard
type PriceBreakdownDTO struct {
	SubtotalWork     int64    `json:"subtotalWork"`
	SubtotalMaterial int64    `json:"subtotalMaterial"`
	Deduction        int64    `json:"deduction"`
	DiscountAmount   int64    `json:"discountAmount"`
	Total            int64    `json:"total"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Request DTOs

type CreateCustomerRequest struct {
	Name       string       `json:"name" validate:"required,max=200"`
	Type       CustomerType `json:"type,omitempty"`
	Email      string       `json:"email" validate:"required,email"`
	Phone      string       `json:"phone" validate:"required,max=50"`
	Address    string       `json:"address,omitempty" validate:"max=500"`
	PostalCode string       `json:"postalCode,omitempty" validate:"max=20"`
	City       string       `json:"city,omitempty" validate:"max=100"`
	OrgNumber  string       `json:"orgNumber,omitempty" validate:"max=20"`
	Notes      string       `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name       string       `json:"name" validate:"required,max=200"`
	Type       CustomerType `json:"type,omitempty"`
	Email      string       `json:"email" validate:"required,email"`
	Phone      string       `json:"phone" validate:"required,max=50"`
	Address    string       `json:"address,omitempty" validate:"max=500"`
	PostalCode string       `json:"postalCode,omitempty" validate:"max=20"`
	City       string       `json:"city,omitempty" validate:"max=100"`
	OrgNumber  string       `json:"orgNumber,omitempty" validate:"max=20"`
	Notes      string       `json:"notes,omitempty"`
}

type CreateServiceRequest struct {
	Category    string          `json:"category" validate:"required,max=100"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description,omitempty"`
	BasePrice   int64           `json:"basePrice" validate:"gte=0"`
	PriceUnit   string          `json:"priceUnit,omitempty" validate:"max=50"`
	PriceType   PriceType       `json:"priceType,omitempty"`
	RotEligible bool            `json:"rotEligible"`
	RutEligible bool            `json:"rutEligible"`
	Location    ServiceLocation `json:"location,omitempty"`
	LaborShare  *float64        `json:"laborShare,omitempty" validate:"omitempty,gte=0,lte=1"`
	SortOrder   int             `json:"sortOrder,omitempty" validate:"gte=0"`
}

type UpdateServiceRequest struct {
	Category    string          `json:"category" validate:"required,max=100"`
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description,omitempty"`
	BasePrice   int64           `json:"basePrice" validate:"gte=0"`
	PriceUnit   string          `json:"priceUnit,omitempty" validate:"max=50"`
	PriceType   PriceType       `json:"priceType,omitempty"`
	RotEligible bool            `json:"rotEligible"`
	RutEligible bool            `json:"rutEligible"`
	Location    ServiceLocation `json:"location,omitempty"`
	LaborShare  *float64        `json:"laborShare,omitempty" validate:"omitempty,gte=0,lte=1"`
	SortOrder   int             `json:"sortOrder,omitempty" validate:"gte=0"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

// ReorderServicesRequest carries the admin drag-drop ordering
type ReorderServicesRequest struct {
	OrderedIDs []uuid.UUID `json:"orderedIds" validate:"required,min=1"`
}

type CreateServiceAddonRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Price       int64  `json:"price" validate:"gte=0"`
	PriceUnit   string `json:"priceUnit,omitempty" validate:"max=50"`
	RotEligible bool   `json:"rotEligible"`
	RutEligible bool   `json:"rutEligible"`
	Icon        string `json:"icon,omitempty" validate:"max=100"`
}

type UpdateServiceAddonRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Price       int64  `json:"price" validate:"gte=0"`
	PriceUnit   string `json:"priceUnit,omitempty" validate:"max=50"`
	RotEligible bool   `json:"rotEligible"`
	RutEligible bool   `json:"rutEligible"`
	Icon        string `json:"icon,omitempty" validate:"max=100"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// BookingAddonSelection is one selected addon in the booking wizard
type BookingAddonSelection struct {
	AddonID  uuid.UUID `json:"addonId" validate:"required"`
	Quantity int       `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

type CreateBookingRequest struct {
	ServiceID    *uuid.UUID              `json:"serviceId,omitempty"`
	CustomerID   *uuid.UUID              `json:"customerId,omitempty"`
	ContactName  string                  `json:"contactName" validate:"required,max=200"`
	ContactEmail string                  `json:"contactEmail" validate:"required,email"`
	ContactPhone string                  `json:"contactPhone,omitempty" validate:"max=50"`
	Address      string                  `json:"address,omitempty" validate:"max=500"`
	PostalCode   string                  `json:"postalCode,omitempty" validate:"max=20"`
	City         string                  `json:"city,omitempty" validate:"max=100"`
	Mode         BookingMode             `json:"mode,omitempty"`
	Description  string                  `json:"description,omitempty"`
	HoursEst     float64                 `json:"hoursEstimated,omitempty" validate:"gte=0"`
	RotRutType   *RotRutType             `json:"rotRutType,omitempty"`
	Addons       []BookingAddonSelection `json:"addons,omitempty" validate:"dive"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type CreateQuoteRequest struct {
	BookingID uuid.UUID   `json:"bookingId" validate:"required"`
	RotRutType *RotRutType `json:"rotRutType,omitempty"`
	Notes     string      `json:"notes,omitempty"`
}

type QuoteLineItemInput struct {
	Description       string       `json:"description" validate:"required,max=500"`
	Kind              LineItemKind `json:"kind,omitempty"`
	Quantity          float64      `json:"quantity" validate:"required,gt=0"`
	UnitPrice         int64        `json:"unitPrice" validate:"gte=0"`
	DeductionEligible bool         `json:"deductionEligible"`
	SortOrder         int          `json:"sortOrder,omitempty" validate:"gte=0"`
}

// UpdateQuoteRequest replaces the quote's line items; totals are recomputed.
// Editing an accepted quote's lines forces re-acceptance.
type UpdateQuoteRequest struct {
	LineItems  []QuoteLineItemInput `json:"lineItems" validate:"required,min=1,dive"`
	RotRutType *RotRutType          `json:"rotRutType,omitempty"`
	Notes      string               `json:"notes,omitempty"`
}

// UpdateQuoteNotesRequest edits internal notes only and never triggers re-acceptance
type UpdateQuoteNotesRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

type SendQuoteRequest struct {
	ValidUntil *time.Time `json:"validUntil,omitempty"`
}

type AcceptQuoteRequest struct {
	SignatureName string    `json:"signatureName" validate:"required,max=200"`
	SignatureDate time.Time `json:"signatureDate" validate:"required"`
	TermsAccepted bool      `json:"termsAccepted"`
}

type RejectQuoteRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type AssignJobRequest struct {
	WorkerID   string `json:"workerId" validate:"required,max=100"`
	WorkerName string `json:"workerName,omitempty" validate:"max=200"`
}

type ManualTimeLogRequest struct {
	Hours float64 `json:"hours" validate:"required,gt=0,lte=24"`
	Note  string  `json:"note,omitempty" validate:"max=500"`
}

type CreateMaterialLogRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice int64   `json:"unitPrice" validate:"gte=0"`
	Supplier  string  `json:"supplier,omitempty" validate:"max=200"`
}

type CreateExpenseLogRequest struct {
	Category string `json:"category" validate:"required,max=100"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Note     string `json:"note,omitempty" validate:"max=500"`
}

type CreateInvoiceFromQuoteRequest struct {
	QuoteID uuid.UUID `json:"quoteId" validate:"required"`
}

type CreateInvoiceFromJobRequest struct {
	JobID uuid.UUID `json:"jobId" validate:"required"`
}

type SendInvoiceRequest struct {
	DueDate *time.Time `json:"dueDate,omitempty"`
}

type MarkInvoicePaidRequest struct {
	PaidAt time.Time `json:"paidAt" validate:"required"`
}

type UpdateInvoiceNoteRequest struct {
	AdminNote string `json:"adminNote" validate:"max=5000"`
}

// PublicAcceptQuoteRequest is the customer-facing acceptance payload
type PublicAcceptQuoteRequest struct {
	SignatureName string    `json:"signatureName" validate:"required,max=200"`
	SignatureDate time.Time `json:"signatureDate" validate:"required"`
	TermsAccepted bool      `json:"termsAccepted"`
}

type CreateStaffRequest struct {
	Email       string    `json:"email" validate:"required,email"`
	Password    string    `json:"password" validate:"required,min=8"`
	FirstName   string    `json:"firstName,omitempty" validate:"max=100"`
	LastName    string    `json:"lastName,omitempty" validate:"max=100"`
	DisplayName string    `json:"displayName" validate:"required,max=200"`
	Role        StaffRole `json:"role" validate:"required"`
	Phone       string    `json:"phone,omitempty" validate:"max=50"`
}

type UpdateStaffRequest struct {
	FirstName   string     `json:"firstName,omitempty" validate:"max=100"`
	LastName    string     `json:"lastName,omitempty" validate:"max=100"`
	DisplayName string     `json:"displayName" validate:"required,max=200"`
	Role        *StaffRole `json:"role,omitempty"`
	Phone       string     `json:"phone,omitempty" validate:"max=50"`
	IsActive    *bool      `json:"isActive,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	Staff StaffDTO `json:"staff"`
}

type ComputePriceRequest struct {
	ServiceID  uuid.UUID               `json:"serviceId" validate:"required"`
	Addons     []BookingAddonSelection `json:"addons,omitempty" validate:"dive"`
	RotRutType *RotRutType             `json:"rotRutType,omitempty"`
	DiscountPercent float64            `json:"discountPercent,omitempty" validate:"gte=0,lte=100"`
}

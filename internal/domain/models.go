package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the database does not (sqlite in tests)
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All monetary amounts in this package are whole Swedish kronor (SEK).
// Fractional öre are never stored; the pricing engine rounds at computation time.

// CustomerType classifies a customer for tax-deduction and invoicing purposes
type CustomerType string

const (
	CustomerTypePrivate CustomerType = "private"
	CustomerTypeCompany CustomerType = "company"
	CustomerTypeBRF     CustomerType = "brf"
)

// IsValid checks if the CustomerType is a valid enum value
func (ct CustomerType) IsValid() bool {
	switch ct {
	case CustomerTypePrivate, CustomerTypeCompany, CustomerTypeBRF:
		return true
	}
	return false
}

// Customer represents a person, company, or housing cooperative that places orders.
// Customers are soft-deleted only; historical orders keep referencing them.
type Customer struct {
	BaseModel
	Name       string         `gorm:"type:varchar(200);not null;index"`
	Type       CustomerType   `gorm:"type:varchar(20);not null;default:'private';index"`
	Email      string         `gorm:"type:varchar(255);not null;index"`
	Phone      string         `gorm:"type:varchar(50);not null"`
	Address    string         `gorm:"type:varchar(500)"`
	PostalCode string         `gorm:"type:varchar(20);column:postal_code"`
	City       string         `gorm:"type:varchar(100)"`
	OrgNumber  string         `gorm:"type:varchar(20);column:org_number;index"`
	Notes      string         `gorm:"type:text"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	Bookings   []Booking      `gorm:"foreignKey:CustomerID"`
}

// PriceType represents how a catalog service is priced
type PriceType string

const (
	PriceTypeHourly PriceType = "hourly"
	PriceTypeFixed  PriceType = "fixed"
	PriceTypeQuote  PriceType = "quote"
)

// IsValid checks if the PriceType is a valid enum value
func (pt PriceType) IsValid() bool {
	switch pt {
	case PriceTypeHourly, PriceTypeFixed, PriceTypeQuote:
		return true
	}
	return false
}

// ServiceLocation represents where a service is performed
type ServiceLocation string

const (
	ServiceLocationIndoor  ServiceLocation = "inomhus"
	ServiceLocationOutdoor ServiceLocation = "utomhus"
	ServiceLocationBoth    ServiceLocation = "båda"
)

// Service represents a catalog entry. Services referenced by bookings are never
// physically deleted; deactivation hides them from new requests.
type Service struct {
	BaseModel
	Category    string          `gorm:"type:varchar(100);not null;index"`
	Title       string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	BasePrice   int64           `gorm:"not null;default:0;column:base_price"`
	PriceUnit   string          `gorm:"type:varchar(50);column:price_unit"`
	PriceType   PriceType       `gorm:"type:varchar(20);not null;default:'fixed';column:price_type"`
	RotEligible bool            `gorm:"not null;default:false;column:rot_eligible"`
	RutEligible bool            `gorm:"not null;default:false;column:rut_eligible"`
	Location    ServiceLocation `gorm:"type:varchar(20);not null;default:'inomhus'"`
	// LaborShare is the fraction of the price that counts as labor, the only
	// part eligible for ROT/RUT deduction.
	LaborShare float64        `gorm:"type:decimal(4,3);not null;default:1.0;column:labor_share"`
	SortOrder  int            `gorm:"not null;default:0;column:sort_order;index"`
	IsActive   bool           `gorm:"not null;default:true;column:is_active;index"`
	Addons     []ServiceAddon `gorm:"foreignKey:ServiceID"`
}

// ServiceAddon is an optional extra tied to exactly one service
type ServiceAddon struct {
	BaseModel
	ServiceID   uuid.UUID `gorm:"type:uuid;not null;index;column:service_id"`
	Service     *Service  `gorm:"foreignKey:ServiceID"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Price       int64     `gorm:"not null;default:0"`
	PriceUnit   string    `gorm:"type:varchar(50);column:price_unit"`
	RotEligible bool      `gorm:"not null;default:false;column:rot_eligible"`
	RutEligible bool      `gorm:"not null;default:false;column:rut_eligible"`
	Icon        string    `gorm:"type:varchar(100)"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active"`
}

// RotRutType represents the Swedish tax deduction regime for a request
type RotRutType string

const (
	RotRutTypeROT RotRutType = "ROT"
	RotRutTypeRUT RotRutType = "RUT"
)

// IsValid checks if the RotRutType is a valid enum value
func (rt RotRutType) IsValid() bool {
	return rt == RotRutTypeROT || rt == RotRutTypeRUT
}

// BookingStatus represents the status of a service request
type BookingStatus string

const (
	BookingStatusNew       BookingStatus = "new"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsValid checks if the BookingStatus is a valid enum value
func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusNew, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status allows no further transitions
func (bs BookingStatus) IsTerminal() bool {
	return bs == BookingStatusCompleted || bs == BookingStatusCancelled
}

// BookingMode represents how the request was initiated
type BookingMode string

const (
	BookingModeStandard  BookingMode = "standard"
	BookingModeHomeVisit BookingMode = "home_visit"
)

// CreatedByType distinguishes authenticated submissions from guest submissions
type CreatedByType string

const (
	CreatedByUser  CreatedByType = "user"
	CreatedByGuest CreatedByType = "guest"
)

// Booking represents an incoming service request from the public wizard.
// Contact fields are duplicated from the customer so guest submissions stand alone.
type Booking struct {
	BaseModel
	ServiceID    *uuid.UUID    `gorm:"type:uuid;index;column:service_id"`
	Service      *Service      `gorm:"foreignKey:ServiceID"`
	ServiceTitle string        `gorm:"type:varchar(200);column:service_title"`
	CustomerID   *uuid.UUID    `gorm:"type:uuid;index;column:customer_id"`
	Customer     *Customer     `gorm:"foreignKey:CustomerID"`
	ContactName  string        `gorm:"type:varchar(200);not null;column:contact_name"`
	ContactEmail string        `gorm:"type:varchar(255);not null;column:contact_email"`
	ContactPhone string        `gorm:"type:varchar(50);column:contact_phone"`
	Address      string        `gorm:"type:varchar(500)"`
	PostalCode   string        `gorm:"type:varchar(20);column:postal_code"`
	City         string        `gorm:"type:varchar(100)"`
	Mode         BookingMode   `gorm:"type:varchar(20);not null;default:'standard'"`
	Description  string        `gorm:"type:text"`
	PriceType    PriceType     `gorm:"type:varchar(20);not null;default:'fixed';column:price_type"`
	HoursEst     float64       `gorm:"type:decimal(6,2);column:hours_estimated"`
	HourlyRate   int64         `gorm:"column:hourly_rate"`
	BasePrice    int64         `gorm:"not null;default:0;column:base_price"`
	FinalPrice   int64         `gorm:"not null;default:0;column:final_price"`
	RotRutType   *RotRutType   `gorm:"type:varchar(10);column:rot_rut_type"`
	Status       BookingStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	CreatedBy    CreatedByType `gorm:"type:varchar(10);not null;default:'guest';column:created_by_type"`
	// SeenAt tracks admin acknowledgment, orthogonal to Status.
	SeenAt    *time.Time     `gorm:"column:seen_at"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Addons    []BookingAddon `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}

// BookingAddon is an immutable snapshot of a selected addon taken at request
// time. Later catalog edits never change a historical order's price.
type BookingAddon struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	BookingID   uuid.UUID  `gorm:"type:uuid;not null;index;column:booking_id"`
	AddonID     uuid.UUID  `gorm:"type:uuid;not null;column:addon_id"`
	Title       string     `gorm:"type:varchar(200);not null"`
	UnitPrice   int64      `gorm:"not null;column:unit_price"`
	Quantity    int        `gorm:"not null;default:1"`
	RotEligible bool       `gorm:"not null;default:false;column:rot_eligible"`
	RutEligible bool       `gorm:"not null;default:false;column:rut_eligible"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Total returns the snapshot line total
func (ba *BookingAddon) Total() int64 {
	return ba.UnitPrice * int64(ba.Quantity)
}

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft           QuoteStatus = "draft"
	QuoteStatusSent            QuoteStatus = "sent"
	QuoteStatusViewed          QuoteStatus = "viewed"
	QuoteStatusAccepted        QuoteStatus = "accepted"
	QuoteStatusPendingReaccept QuoteStatus = "pending_reaccept"
	QuoteStatusRejected        QuoteStatus = "rejected"
	QuoteStatusExpired         QuoteStatus = "expired"
)

// IsTerminal reports whether the status allows no further transitions.
// Accepted is semi-terminal: it can still move to pending_reaccept.
func (qs QuoteStatus) IsTerminal() bool {
	return qs == QuoteStatusRejected || qs == QuoteStatusExpired
}

// AcceptedByType records whether acceptance came from the customer or was
// performed by staff on the customer's behalf.
type AcceptedByType string

const (
	AcceptedByCustomer AcceptedByType = "customer"
	AcceptedByAdmin    AcceptedByType = "admin"
)

// LineItemKind classifies a quote/invoice line for the ROT/RUT deduction base
type LineItemKind string

const (
	LineItemKindWork     LineItemKind = "work"
	LineItemKindMaterial LineItemKind = "material"
)

// Quote is a priced proposal derived 1:1 from a booking
type Quote struct {
	BaseModel
	BookingID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex;column:booking_id"`
	Booking     *Booking        `gorm:"foreignKey:BookingID"`
	CustomerID  *uuid.UUID      `gorm:"type:uuid;index;column:customer_id"`
	Customer    *Customer       `gorm:"foreignKey:CustomerID"`
	QuoteNumber string          `gorm:"type:varchar(50);uniqueIndex;column:quote_number"`
	Status      QuoteStatus     `gorm:"type:varchar(30);not null;default:'draft';index"`
	LineItems   []QuoteLineItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	// Totals are whole SEK, recomputed by the pricing engine on every line edit.
	SubtotalWorkSEK int64       `gorm:"not null;default:0;column:subtotal_work_sek"`
	SubtotalMatSEK  int64       `gorm:"not null;default:0;column:subtotal_mat_sek"`
	RotDeductionSEK int64       `gorm:"not null;default:0;column:rot_deduction_sek"`
	TotalSEK        int64       `gorm:"not null;default:0;column:total_sek"`
	RotRutType      *RotRutType `gorm:"type:varchar(10);column:rot_rut_type"`
	ValidUntil      *time.Time  `gorm:"column:valid_until"`
	SentAt          *time.Time  `gorm:"column:sent_at"`
	ViewedAt        *time.Time  `gorm:"column:viewed_at"`
	AcceptedAt      *time.Time  `gorm:"column:accepted_at"`
	AcceptedBy      *AcceptedByType `gorm:"type:varchar(10);column:accepted_by_type"`
	SignatureName   string      `gorm:"type:varchar(200);column:signature_name"`
	SignatureDate   *time.Time  `gorm:"type:date;column:signature_date"`
	TermsAccepted   bool        `gorm:"not null;default:false;column:terms_accepted"`
	// PublicToken is an unguessable read capability for the unauthenticated
	// customer view. It never grants write access.
	PublicToken         string     `gorm:"type:varchar(64);uniqueIndex;column:public_token"`
	ReacceptRequestedAt *time.Time `gorm:"column:reaccept_requested_at"`
	Notes               string     `gorm:"type:text"`
}

// IsExpired reports whether a draft/sent quote has passed its validity window.
// Expiry is a read-time projection, never flipped by a background job.
func (q *Quote) IsExpired(now time.Time) bool {
	if q.Status != QuoteStatusDraft && q.Status != QuoteStatusSent {
		return false
	}
	return q.ValidUntil != nil && now.After(*q.ValidUntil)
}

// EffectiveStatus returns the status including the lazy expiry projection
func (q *Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if q.IsExpired(now) {
		return QuoteStatusExpired
	}
	return q.Status
}

// QuoteLineItem is a single priced line on a quote
type QuoteLineItem struct {
	BaseModel
	QuoteID     uuid.UUID    `gorm:"type:uuid;not null;index;column:quote_id"`
	Quote       *Quote       `gorm:"foreignKey:QuoteID"`
	Description string       `gorm:"type:varchar(500);not null"`
	Kind        LineItemKind `gorm:"type:varchar(20);not null;default:'work'"`
	Quantity    float64      `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice   int64        `gorm:"not null;column:unit_price"`
	Total       int64        `gorm:"not null"`
	// DeductionEligible marks the line as counting toward the ROT/RUT base.
	DeductionEligible bool `gorm:"not null;default:false;column:deduction_eligible"`
	SortOrder         int  `gorm:"not null;default:0;column:sort_order"`
}

// JobStatus represents the execution status of a job
type JobStatus string

const (
	JobStatusPool       JobStatus = "pool"
	JobStatusAssigned   JobStatus = "assigned"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusPaused     JobStatus = "paused"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusInvoiced   JobStatus = "invoiced"
)

// AllowsLogging reports whether time/material/expense entries may still be appended
func (js JobStatus) AllowsLogging() bool {
	switch js {
	case JobStatusAssigned, JobStatusInProgress, JobStatusPaused:
		return true
	}
	return false
}

// JobPricingMode represents how the executed work is billed
type JobPricingMode string

const (
	JobPricingHourly JobPricingMode = "hourly"
	JobPricingFixed  JobPricingMode = "fixed"
)

// Job tracks execution of an accepted quote (or a direct booking).
// Aggregate fields are denormalized projections over the append-only logs and
// are recomputed, never incrementally trusted.
type Job struct {
	BaseModel
	QuoteID     *uuid.UUID     `gorm:"type:uuid;uniqueIndex;column:quote_id"`
	Quote       *Quote         `gorm:"foreignKey:QuoteID"`
	BookingID   *uuid.UUID     `gorm:"type:uuid;index;column:booking_id"`
	Booking     *Booking       `gorm:"foreignKey:BookingID"`
	Status      JobStatus      `gorm:"type:varchar(20);not null;default:'pool';index"`
	PricingMode JobPricingMode `gorm:"type:varchar(10);not null;default:'hourly';column:pricing_mode"`
	HourlyRate  int64          `gorm:"column:hourly_rate"`
	FixedPrice  int64          `gorm:"column:fixed_price"`
	Assignments []JobAssignment `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	TimeLogs    []TimeLog       `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	MaterialLogs []MaterialLog  `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	ExpenseLogs  []ExpenseLog   `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	TotalHours        float64 `gorm:"type:decimal(8,2);not null;default:0;column:total_hours"`
	TotalMaterialCost int64   `gorm:"not null;default:0;column:total_material_cost"`
	TotalExpenses     int64   `gorm:"not null;default:0;column:total_expenses"`
	CompletedAt       *time.Time `gorm:"column:completed_at"`
}

// IsAssignedTo reports whether the given worker is assigned to the job
func (j *Job) IsAssignedTo(workerID string) bool {
	for _, a := range j.Assignments {
		if a.WorkerID == workerID {
			return true
		}
	}
	return false
}

// JobAssignment links a worker to a job. Worker name is a display snapshot.
type JobAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	JobID      uuid.UUID `gorm:"type:uuid;not null;index;column:job_id"`
	WorkerID   string    `gorm:"type:varchar(100);not null;column:worker_id"`
	WorkerName string    `gorm:"type:varchar(200);column:worker_name"`
	AssignedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;column:assigned_at"`
}

// TimeLog is an append-only time entry. Timer entries have StartedAt set and a
// null EndedAt while running; manual entries carry only Hours.
type TimeLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	JobID     uuid.UUID  `gorm:"type:uuid;not null;index;column:job_id"`
	WorkerID  string     `gorm:"type:varchar(100);not null;column:worker_id"`
	StartedAt *time.Time `gorm:"column:started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at"`
	Hours     float64    `gorm:"type:decimal(6,2);not null;default:0"`
	Manual    bool       `gorm:"not null;default:false"`
	Note      string     `gorm:"type:varchar(500)"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// IsOpen reports whether the entry is a running timer
func (t *TimeLog) IsOpen() bool {
	return t.StartedAt != nil && t.EndedAt == nil
}

// MaterialLog is an append-only material purchase entry
type MaterialLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index;column:job_id"`
	WorkerID  string    `gorm:"type:varchar(100);column:worker_id"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Quantity  float64   `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice int64     `gorm:"not null;column:unit_price"`
	Supplier  string    `gorm:"type:varchar(200)"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Total returns the line total in whole SEK, rounded half away from zero
func (m *MaterialLog) Total() int64 {
	v := m.Quantity * float64(m.UnitPrice)
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}

// ExpenseLog is an append-only expense entry
type ExpenseLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index;column:job_id"`
	WorkerID  string    `gorm:"type:varchar(100);column:worker_id"`
	Category  string    `gorm:"type:varchar(100);not null"`
	Amount    int64     `gorm:"not null"`
	Note      string    `gorm:"type:varchar(500)"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// InvoiceStatus represents the stored status of an invoice.
// Overdue is intentionally absent: it is a read-time projection.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceStatusOverdue is the derived display status for unpaid sent invoices
// past their due date. It is never written to storage.
const InvoiceStatusOverdue InvoiceStatus = "overdue"

// Invoice is the final billing document for a job/quote pair
type Invoice struct {
	BaseModel
	JobID          *uuid.UUID        `gorm:"type:uuid;uniqueIndex;column:job_id"`
	Job            *Job              `gorm:"foreignKey:JobID"`
	QuoteID        *uuid.UUID        `gorm:"type:uuid;index;column:quote_id"`
	Quote          *Quote            `gorm:"foreignKey:QuoteID"`
	CustomerID     *uuid.UUID        `gorm:"type:uuid;index;column:customer_id"`
	Customer       *Customer         `gorm:"foreignKey:CustomerID"`
	InvoiceNumber  string            `gorm:"type:varchar(50);uniqueIndex;column:invoice_number"`
	Status         InvoiceStatus     `gorm:"type:varchar(20);not null;default:'draft';index"`
	LineItems      []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Subtotal       int64             `gorm:"not null;default:0"`
	DiscountAmount int64             `gorm:"not null;default:0;column:discount_amount"`
	VATAmount      int64             `gorm:"not null;default:0;column:vat_amount"`
	RotAmount      int64             `gorm:"not null;default:0;column:rot_amount"`
	RutAmount      int64             `gorm:"not null;default:0;column:rut_amount"`
	TotalAmount    int64             `gorm:"not null;default:0;column:total_amount"`
	DueDate        *time.Time        `gorm:"type:date;column:due_date"`
	SentAt         *time.Time        `gorm:"column:sent_at"`
	PaidAt         *time.Time        `gorm:"column:paid_at"`
	PublicToken    string            `gorm:"type:varchar(64);uniqueIndex;column:public_token"`
	AdminNote      string            `gorm:"type:text;column:admin_note"`
}

// IsOverdue reports whether the invoice is past due and unpaid.
// Derived at read time; the stored status stays "sent".
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusSent && i.PaidAt == nil &&
		i.DueDate != nil && now.After(*i.DueDate)
}

// EffectiveStatus returns the status including the overdue projection
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.IsOverdue(now) {
		return InvoiceStatusOverdue
	}
	return i.Status
}

// InvoiceLineItem is a single line on an invoice
type InvoiceLineItem struct {
	BaseModel
	InvoiceID   uuid.UUID    `gorm:"type:uuid;not null;index;column:invoice_id"`
	Invoice     *Invoice     `gorm:"foreignKey:InvoiceID"`
	Description string       `gorm:"type:varchar(500);not null"`
	Kind        LineItemKind `gorm:"type:varchar(20);not null;default:'work'"`
	Quantity    float64      `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice   int64        `gorm:"not null;column:unit_price"`
	Total       int64        `gorm:"not null"`
	SortOrder   int          `gorm:"not null;default:0;column:sort_order"`
}

// SequenceKind distinguishes the independent number sequences
type SequenceKind string

const (
	SequenceKindQuote   SequenceKind = "quote"
	SequenceKindInvoice SequenceKind = "invoice"
)

// Prefix returns the document number prefix for the sequence kind
func (sk SequenceKind) Prefix() string {
	if sk == SequenceKindInvoice {
		return "F"
	}
	return "Q"
}

// NumberSequence is an atomic per-kind, per-year counter for document numbers
type NumberSequence struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key"`
	Kind         SequenceKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_number_sequences_kind_year"`
	Year         int          `gorm:"not null;uniqueIndex:idx_number_sequences_kind_year"`
	LastSequence int          `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// OrderStage tags which lifecycle stage an order aggregate has reached
type OrderStage string

const (
	OrderStageRequest  OrderStage = "request"
	OrderStageQuoted   OrderStage = "quoted"
	OrderStageAccepted OrderStage = "accepted"
	OrderStageInWork   OrderStage = "in_work"
	OrderStageInvoiced OrderStage = "invoiced"
	OrderStagePaid     OrderStage = "paid"
	OrderStageClosed   OrderStage = "closed"
)

// StaffRole represents a staff role carried in JWT claims
type StaffRole string

const (
	RoleAdmin  StaffRole = "admin"
	RoleWorker StaffRole = "worker"
)

// IsValid checks if the staff role is valid
func (sr StaffRole) IsValid() bool {
	switch sr {
	case RoleAdmin, RoleWorker:
		return true
	}
	return false
}

// Staff represents an internal user (admin or field worker)
type Staff struct {
	ID          string     `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string     `gorm:"type:varchar(255);not null;unique" json:"email"`
	FirstName   string     `gorm:"type:varchar(100);column:first_name" json:"firstName,omitempty"`
	LastName    string     `gorm:"type:varchar(100);column:last_name" json:"lastName,omitempty"`
	DisplayName string     `gorm:"type:varchar(200);not null;column:name" json:"displayName"`
	Role        StaffRole  `gorm:"type:varchar(20);not null;default:'worker'" json:"role"`
	// PasswordHash is a bcrypt hash, never serialized
	PasswordHash string     `gorm:"type:varchar(100);not null;column:password_hash" json:"-"`
	Phone        string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	IsActive     bool       `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// FullName returns the staff member's full name, or display name if first/last not set
func (s *Staff) FullName() string {
	if s.FirstName != "" && s.LastName != "" {
		return s.FirstName + " " + s.LastName
	}
	return s.DisplayName
}

// ActivityTargetType identifies which entity an activity entry belongs to
type ActivityTargetType string

const (
	TargetBooking ActivityTargetType = "booking"
	TargetQuote   ActivityTargetType = "quote"
	TargetJob     ActivityTargetType = "job"
	TargetInvoice ActivityTargetType = "invoice"
)

// ActivityLog is an append-only record of lifecycle events on an entity.
// Entries are never updated or deleted.
type ActivityLog struct {
	BaseModel
	TargetType ActivityTargetType `gorm:"type:varchar(50);not null;index:idx_activity_logs_target;column:target_type"`
	TargetID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_activity_logs_target;column:target_id"`
	Title      string             `gorm:"type:varchar(200);not null"`
	Body       string             `gorm:"type:varchar(2000)"`
	OccurredAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
	ActorID    string             `gorm:"type:varchar(100);column:actor_id"`
	ActorName  string             `gorm:"type:varchar(200);column:actor_name"`
}

// BeforeCreate assigns a UUID when the database does not (sqlite in tests)
func (ba *BookingAddon) BeforeCreate(tx *gorm.DB) error {
	if ba.ID == uuid.Nil {
		ba.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns a UUID when the database does not (sqlite in tests)
func (a *JobAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns a UUID when the database does not (sqlite in tests)
func (t *TimeLog) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns a UUID when the database does not (sqlite in tests)
func (m *MaterialLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns a UUID when the database does not (sqlite in tests)
func (e *ExpenseLog) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns a UUID when the database does not (sqlite in tests)
func (n *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

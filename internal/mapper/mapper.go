package mapper

import (
	"fmt"
	"time"

	"github.com/hemverk/order-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeFormat)
	return &s
}

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:         customer.ID,
		Name:       customer.Name,
		Type:       customer.Type,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Address:    customer.Address,
		PostalCode: customer.PostalCode,
		City:       customer.City,
		OrgNumber:  customer.OrgNumber,
		Notes:      customer.Notes,
		CreatedAt:  customer.CreatedAt.Format(timeFormat),
		UpdatedAt:  customer.UpdatedAt.Format(timeFormat),
	}
}

// ToServiceDTO converts Service to ServiceDTO
func ToServiceDTO(service *domain.Service) domain.ServiceDTO {
	var addons []domain.ServiceAddonDTO
	if len(service.Addons) > 0 {
		addons = make([]domain.ServiceAddonDTO, len(service.Addons))
		for i, addon := range service.Addons {
			addons[i] = ToServiceAddonDTO(&addon)
		}
	}

	return domain.ServiceDTO{
		ID:          service.ID,
		Category:    service.Category,
		Title:       service.Title,
		Description: service.Description,
		BasePrice:   service.BasePrice,
		PriceUnit:   service.PriceUnit,
		PriceType:   service.PriceType,
		RotEligible: service.RotEligible,
		RutEligible: service.RutEligible,
		Location:    service.Location,
		LaborShare:  service.LaborShare,
		SortOrder:   service.SortOrder,
		IsActive:    service.IsActive,
		Addons:      addons,
		CreatedAt:   service.CreatedAt.Format(timeFormat),
		UpdatedAt:   service.UpdatedAt.Format(timeFormat),
	}
}

// ToServiceAddonDTO converts ServiceAddon to ServiceAddonDTO
func ToServiceAddonDTO(addon *domain.ServiceAddon) domain.ServiceAddonDTO {
	return domain.ServiceAddonDTO{
		ID:          addon.ID,
		ServiceID:   addon.ServiceID,
		Title:       addon.Title,
		Price:       addon.Price,
		PriceUnit:   addon.PriceUnit,
		RotEligible: addon.RotEligible,
		RutEligible: addon.RutEligible,
		Icon:        addon.Icon,
		IsActive:    addon.IsActive,
	}
}

// ToBookingDTO converts Booking to BookingDTO
func ToBookingDTO(booking *domain.Booking) domain.BookingDTO {
	var addons []domain.BookingAddonDTO
	if len(booking.Addons) > 0 {
		addons = make([]domain.BookingAddonDTO, len(booking.Addons))
		for i, addon := range booking.Addons {
			addons[i] = ToBookingAddonDTO(&addon)
		}
	}

	return domain.BookingDTO{
		ID:           booking.ID,
		ServiceID:    booking.ServiceID,
		ServiceTitle: booking.ServiceTitle,
		CustomerID:   booking.CustomerID,
		ContactName:  booking.ContactName,
		ContactEmail: booking.ContactEmail,
		ContactPhone: booking.ContactPhone,
		Address:      booking.Address,
		PostalCode:   booking.PostalCode,
		City:         booking.City,
		Mode:         booking.Mode,
		Description:  booking.Description,
		PriceType:    booking.PriceType,
		HoursEst:     booking.HoursEst,
		HourlyRate:   booking.HourlyRate,
		BasePrice:    booking.BasePrice,
		FinalPrice:   booking.FinalPrice,
		RotRutType:   booking.RotRutType,
		Status:       booking.Status,
		CreatedBy:    booking.CreatedBy,
		SeenAt:       formatTimePtr(booking.SeenAt),
		Addons:       addons,
		CreatedAt:    booking.CreatedAt.Format(timeFormat),
		UpdatedAt:    booking.UpdatedAt.Format(timeFormat),
	}
}

// ToBookingAddonDTO converts BookingAddon to BookingAddonDTO
func ToBookingAddonDTO(addon *domain.BookingAddon) domain.BookingAddonDTO {
	return domain.BookingAddonDTO{
		ID:          addon.ID,
		AddonID:     addon.AddonID,
		Title:       addon.Title,
		UnitPrice:   addon.UnitPrice,
		Quantity:    addon.Quantity,
		RotEligible: addon.RotEligible,
		RutEligible: addon.RutEligible,
		Total:       addon.Total(),
	}
}

// ToQuoteDTO converts Quote to QuoteDTO. Status carries the lazy expiry
// projection so callers never see a stale "sent" past the validity window.
func ToQuoteDTO(quote *domain.Quote, now time.Time) domain.QuoteDTO {
	var items []domain.QuoteLineItemDTO
	if len(quote.LineItems) > 0 {
		items = make([]domain.QuoteLineItemDTO, len(quote.LineItems))
		for i, item := range quote.LineItems {
			items[i] = ToQuoteLineItemDTO(&item)
		}
	}

	var customerName string
	if quote.Customer != nil {
		customerName = quote.Customer.Name
	}

	return domain.QuoteDTO{
		ID:            quote.ID,
		BookingID:     quote.BookingID,
		CustomerID:    quote.CustomerID,
		CustomerName:  customerName,
		QuoteNumber:   quote.QuoteNumber,
		Status:        quote.EffectiveStatus(now),
		LineItems:     items,
		SubtotalWork:  quote.SubtotalWorkSEK,
		SubtotalMat:   quote.SubtotalMatSEK,
		RotDeduction:  quote.RotDeductionSEK,
		Total:         quote.TotalSEK,
		RotRutType:    quote.RotRutType,
		ValidUntil:    formatTimePtr(quote.ValidUntil),
		SentAt:        formatTimePtr(quote.SentAt),
		ViewedAt:      formatTimePtr(quote.ViewedAt),
		AcceptedAt:    formatTimePtr(quote.AcceptedAt),
		AcceptedBy:    quote.AcceptedBy,
		SignatureName: quote.SignatureName,
		SignatureDate: formatTimePtr(quote.SignatureDate),
		TermsAccepted: quote.TermsAccepted,
		ReacceptReqAt: formatTimePtr(quote.ReacceptRequestedAt),
		Notes:         quote.Notes,
		CreatedAt:     quote.CreatedAt.Format(timeFormat),
		UpdatedAt:     quote.UpdatedAt.Format(timeFormat),
	}
}

// ToQuoteLineItemDTO converts QuoteLineItem to QuoteLineItemDTO
func ToQuoteLineItemDTO(item *domain.QuoteLineItem) domain.QuoteLineItemDTO {
	return domain.QuoteLineItemDTO{
		ID:                item.ID,
		Description:       item.Description,
		Kind:              item.Kind,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice,
		Total:             item.Total,
		DeductionEligible: item.DeductionEligible,
		SortOrder:         item.SortOrder,
	}
}

// ToJobDTO converts Job to JobDTO
func ToJobDTO(job *domain.Job) domain.JobDTO {
	var assignments []domain.JobAssignmentDTO
	if len(job.Assignments) > 0 {
		assignments = make([]domain.JobAssignmentDTO, len(job.Assignments))
		for i, a := range job.Assignments {
			assignments[i] = domain.JobAssignmentDTO{
				ID:         a.ID,
				WorkerID:   a.WorkerID,
				WorkerName: a.WorkerName,
				AssignedAt: a.AssignedAt.Format(timeFormat),
			}
		}
	}

	var timeLogs []domain.TimeLogDTO
	if len(job.TimeLogs) > 0 {
		timeLogs = make([]domain.TimeLogDTO, len(job.TimeLogs))
		for i, t := range job.TimeLogs {
			timeLogs[i] = ToTimeLogDTO(&t)
		}
	}

	var materialLogs []domain.MaterialLogDTO
	if len(job.MaterialLogs) > 0 {
		materialLogs = make([]domain.MaterialLogDTO, len(job.MaterialLogs))
		for i, m := range job.MaterialLogs {
			materialLogs[i] = ToMaterialLogDTO(&m)
		}
	}

	var expenseLogs []domain.ExpenseLogDTO
	if len(job.ExpenseLogs) > 0 {
		expenseLogs = make([]domain.ExpenseLogDTO, len(job.ExpenseLogs))
		for i, e := range job.ExpenseLogs {
			expenseLogs[i] = ToExpenseLogDTO(&e)
		}
	}

	return domain.JobDTO{
		ID:                job.ID,
		QuoteID:           job.QuoteID,
		BookingID:         job.BookingID,
		Status:            job.Status,
		PricingMode:       job.PricingMode,
		HourlyRate:        job.HourlyRate,
		FixedPrice:        job.FixedPrice,
		Assignments:       assignments,
		TimeLogs:          timeLogs,
		MaterialLogs:      materialLogs,
		ExpenseLogs:       expenseLogs,
		TotalHours:        job.TotalHours,
		TotalMaterialCost: job.TotalMaterialCost,
		TotalExpenses:     job.TotalExpenses,
		CompletedAt:       formatTimePtr(job.CompletedAt),
		CreatedAt:         job.CreatedAt.Format(timeFormat),
		UpdatedAt:         job.UpdatedAt.Format(timeFormat),
	}
}

// ToTimeLogDTO converts TimeLog to TimeLogDTO
func ToTimeLogDTO(entry *domain.TimeLog) domain.TimeLogDTO {
	return domain.TimeLogDTO{
		ID:        entry.ID,
		WorkerID:  entry.WorkerID,
		StartedAt: formatTimePtr(entry.StartedAt),
		EndedAt:   formatTimePtr(entry.EndedAt),
		Hours:     entry.Hours,
		Manual:    entry.Manual,
		Note:      entry.Note,
		Open:      entry.IsOpen(),
		CreatedAt: entry.CreatedAt.Format(timeFormat),
	}
}

// ToMaterialLogDTO converts MaterialLog to MaterialLogDTO
func ToMaterialLogDTO(entry *domain.MaterialLog) domain.MaterialLogDTO {
	return domain.MaterialLogDTO{
		ID:        entry.ID,
		WorkerID:  entry.WorkerID,
		Name:      entry.Name,
		Quantity:  entry.Quantity,
		UnitPrice: entry.UnitPrice,
		Total:     entry.Total(),
		Supplier:  entry.Supplier,
		CreatedAt: entry.CreatedAt.Format(timeFormat),
	}
}

// ToExpenseLogDTO converts ExpenseLog to ExpenseLogDTO
func ToExpenseLogDTO(entry *domain.ExpenseLog) domain.ExpenseLogDTO {
	return domain.ExpenseLogDTO{
		ID:        entry.ID,
		WorkerID:  entry.WorkerID,
		Category:  entry.Category,
		Amount:    entry.Amount,
		Note:      entry.Note,
		CreatedAt: entry.CreatedAt.Format(timeFormat),
	}
}

// ToInvoiceDTO converts Invoice to InvoiceDTO. Status carries the overdue
// projection for sent invoices past their due date.
func ToInvoiceDTO(invoice *domain.Invoice, now time.Time) domain.InvoiceDTO {
	var items []domain.InvoiceLineItemDTO
	if len(invoice.LineItems) > 0 {
		items = make([]domain.InvoiceLineItemDTO, len(invoice.LineItems))
		for i, item := range invoice.LineItems {
			items[i] = domain.InvoiceLineItemDTO{
				ID:          item.ID,
				Description: item.Description,
				Kind:        item.Kind,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Total:       item.Total,
				SortOrder:   item.SortOrder,
			}
		}
	}

	var customerName string
	if invoice.Customer != nil {
		customerName = invoice.Customer.Name
	}

	return domain.InvoiceDTO{
		ID:             invoice.ID,
		JobID:          invoice.JobID,
		QuoteID:        invoice.QuoteID,
		CustomerID:     invoice.CustomerID,
		CustomerName:   customerName,
		InvoiceNumber:  invoice.InvoiceNumber,
		Status:         invoice.EffectiveStatus(now),
		LineItems:      items,
		Subtotal:       invoice.Subtotal,
		DiscountAmount: invoice.DiscountAmount,
		VATAmount:      invoice.VATAmount,
		RotAmount:      invoice.RotAmount,
		RutAmount:      invoice.RutAmount,
		TotalAmount:    invoice.TotalAmount,
		DueDate:        formatTimePtr(invoice.DueDate),
		SentAt:         formatTimePtr(invoice.SentAt),
		PaidAt:         formatTimePtr(invoice.PaidAt),
		AdminNote:      invoice.AdminNote,
		CreatedAt:      invoice.CreatedAt.Format(timeFormat),
		UpdatedAt:      invoice.UpdatedAt.Format(timeFormat),
	}
}

// ToActivityLogDTO converts ActivityLog to ActivityLogDTO
func ToActivityLogDTO(entry *domain.ActivityLog) domain.ActivityLogDTO {
	return domain.ActivityLogDTO{
		ID:         entry.ID,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Title:      entry.Title,
		Body:       entry.Body,
		OccurredAt: entry.OccurredAt.Format(timeFormat),
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
	}
}

// ToStaffDTO converts Staff to StaffDTO
func ToStaffDTO(staff *domain.Staff) domain.StaffDTO {
	return domain.StaffDTO{
		ID:          staff.ID,
		Email:       staff.Email,
		DisplayName: staff.DisplayName,
		Role:        staff.Role,
		Phone:       staff.Phone,
		IsActive:    staff.IsActive,
	}
}

// FormatError creates a formatted error message
func FormatError(entity, operation string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", operation, entity, err)
}

package validation

import (
	"slices"
	"strings"

	"hunttickets/internal/models"
)

func ValidateTicketCreate(req *models.CreateTicketRequest) Result {
	var errs []string

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "Name is required")
	}
	errs = checkLength(errs, "Name", req.Name, MaxNameLength)

	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, "Email is required")
	} else if !IsEmail(req.Email) {
		errs = append(errs, "Invalid email format")
	}
	errs = checkLength(errs, "Email", req.Email, MaxEmailLength)

	if req.Phone != nil {
		if !IsPhone(*req.Phone) {
			errs = append(errs, "Invalid phone format")
		}
		errs = checkLength(errs, "Phone", *req.Phone, MaxPhoneLength)
	}

	if req.TicketType != "" && !slices.Contains(models.TicketTypes, req.TicketType) {
		errs = append(errs, "Invalid ticket type")
	}

	if req.EventID != nil && *req.EventID <= 0 {
		errs = append(errs, "Invalid event ID")
	}

	return newResult(errs)
}

func ValidateTicketUpdate(req *models.UpdateTicketRequest) Result {
	var errs []string

	if req.IsEmpty() {
		return newResult([]string{"At least one field must be provided for update"})
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			errs = append(errs, "Name is required")
		}
		errs = checkLength(errs, "Name", *req.Name, MaxNameLength)
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			errs = append(errs, "Email is required")
		} else if !IsEmail(*req.Email) {
			errs = append(errs, "Invalid email format")
		}
		errs = checkLength(errs, "Email", *req.Email, MaxEmailLength)
	}
	if req.Phone != nil {
		if !IsPhone(*req.Phone) {
			errs = append(errs, "Invalid phone format")
		}
		errs = checkLength(errs, "Phone", *req.Phone, MaxPhoneLength)
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) == "" {
		errs = append(errs, "Status cannot be empty")
	}
	if req.TicketType != nil && !slices.Contains(models.TicketTypes, *req.TicketType) {
		errs = append(errs, "Invalid ticket type")
	}
	if req.EventID != nil && *req.EventID <= 0 {
		errs = append(errs, "Invalid event ID")
	}

	return newResult(errs)
}

// SanitizeTicketCreate builds the row to insert from a validated request.
func SanitizeTicketCreate(req *models.CreateTicketRequest) *models.Ticket {
	ticketType := req.TicketType
	if ticketType == "" {
		ticketType = models.TicketTypeRegular
	}

	var phone *string
	if req.Phone != nil {
		if p := strings.TrimSpace(*req.Phone); p != "" {
			phone = &p
		}
	}

	return &models.Ticket{
		Name:   SanitizeInput(req.Name),
		Email:  SanitizeInput(req.Email),
		Phone:  phone,
		Status: models.TicketStatusActive,
		Metadata: models.TicketMetadata{
			EventID:    req.EventID,
			TicketType: ticketType,
			CreatedBy:  "api",
			Version:    "1.0",
		},
	}
}

// SanitizeTicketUpdate strips markup characters from identity fields in place.
func SanitizeTicketUpdate(req *models.UpdateTicketRequest) {
	if req.Name != nil {
		n := SanitizeInput(*req.Name)
		req.Name = &n
	}
	if req.Email != nil {
		e := SanitizeInput(*req.Email)
		req.Email = &e
	}
	if req.Phone != nil {
		p := strings.TrimSpace(*req.Phone)
		req.Phone = &p
	}
}

package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"hunttickets/internal/models"

	"github.com/shopspring/decimal"
)

var (
	categoryError = fmt.Sprintf("Category must be one of: %s", strings.Join(models.EventCategories, ", "))
	statusError   = fmt.Sprintf("Status must be one of: %s", strings.Join(models.EventStatuses, ", "))
)

// ValidateEventCreate checks a new event payload against the clock now.
func ValidateEventCreate(req *models.CreateEventRequest, now time.Time) Result {
	var errs []string

	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, "Title is required")
	}
	errs = checkLength(errs, "Title", req.Title, MaxTitleLength)

	if strings.TrimSpace(req.EventDate) == "" {
		errs = append(errs, "Event date is required")
	} else if !IsFutureDate(req.EventDate, now) {
		errs = append(errs, "Event date must be in the future and valid")
	}

	if strings.TrimSpace(req.Location) == "" {
		errs = append(errs, "Location is required")
	}
	errs = checkLength(errs, "Location", req.Location, MaxLocationLength)

	if req.OrganizerID != nil {
		errs = checkLength(errs, "Organizer ID", *req.OrganizerID, MaxOrganizerIDLength)
	}

	if req.MaxCapacity != nil && *req.MaxCapacity < 1 {
		errs = append(errs, "Max capacity must be at least 1")
	}

	if req.Price != nil && req.Price.IsNegative() {
		errs = append(errs, "Price cannot be negative")
	}

	if req.Category != "" && !slices.Contains(models.EventCategories, req.Category) {
		errs = append(errs, categoryError)
	}

	return newResult(errs)
}

// ValidateEventUpdate checks only the fields present in a partial update.
func ValidateEventUpdate(req *models.UpdateEventRequest, now time.Time) Result {
	var errs []string

	if req.IsEmpty() {
		errs = append(errs, "At least one field must be provided for update")
		return newResult(errs)
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			errs = append(errs, "Title is required")
		}
		errs = checkLength(errs, "Title", *req.Title, MaxTitleLength)
	}
	if req.EventDate != nil && !IsFutureDate(*req.EventDate, now) {
		errs = append(errs, "Event date must be in the future and valid")
	}
	if req.Location != nil {
		if strings.TrimSpace(*req.Location) == "" {
			errs = append(errs, "Location is required")
		}
		errs = checkLength(errs, "Location", *req.Location, MaxLocationLength)
	}
	if req.OrganizerID != nil {
		errs = checkLength(errs, "Organizer ID", *req.OrganizerID, MaxOrganizerIDLength)
	}
	if req.MaxCapacity != nil && *req.MaxCapacity < 1 {
		errs = append(errs, "Max capacity must be at least 1")
	}
	if req.CurrentCapacity != nil {
		if *req.CurrentCapacity < 0 {
			errs = append(errs, "Current capacity cannot be negative")
		} else if req.MaxCapacity != nil && *req.CurrentCapacity > *req.MaxCapacity {
			errs = append(errs, "Current capacity cannot exceed max capacity")
		}
	}
	if req.Price != nil && req.Price.IsNegative() {
		errs = append(errs, "Price cannot be negative")
	}
	if req.Status != nil && !slices.Contains(models.EventStatuses, *req.Status) {
		errs = append(errs, statusError)
	}
	if req.Category != nil && !slices.Contains(models.EventCategories, *req.Category) {
		errs = append(errs, categoryError)
	}

	return newResult(errs)
}

// SanitizeEventCreate trims text fields and fills in defaults. The input
// must already have passed ValidateEventCreate.
func SanitizeEventCreate(req *models.CreateEventRequest) (*models.Event, error) {
	eventDate, err := ParseDate(req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("parse event date: %w", err)
	}

	maxCapacity := models.DefaultMaxCapacity
	if req.MaxCapacity != nil && *req.MaxCapacity > 0 {
		maxCapacity = *req.MaxCapacity
	}

	price := decimal.Zero
	if req.Price != nil && req.Price.IsPositive() {
		price = *req.Price
	}

	category := req.Category
	if category == "" {
		category = models.CategoryGeneral
	}

	return &models.Event{
		Title:           strings.TrimSpace(req.Title),
		Description:     trimToNil(req.Description),
		EventDate:       eventDate.UTC(),
		Location:        strings.TrimSpace(req.Location),
		MaxCapacity:     maxCapacity,
		CurrentCapacity: 0,
		Price:           price,
		Status:          models.EventStatusActive,
		Category:        category,
		OrganizerID:     trimToNil(req.OrganizerID),
		Metadata:        models.JSONMap{},
	}, nil
}

// SanitizeEventUpdate converts a validated partial update into its typed form.
func SanitizeEventUpdate(req *models.UpdateEventRequest) (*models.EventUpdate, error) {
	upd := &models.EventUpdate{
		MaxCapacity:     req.MaxCapacity,
		CurrentCapacity: req.CurrentCapacity,
		Price:           req.Price,
		Status:          req.Status,
		Category:        req.Category,
		Metadata:        req.Metadata,
	}
	if req.Title != nil {
		upd.Title = trimmed(*req.Title)
	}
	if req.Description != nil {
		// an empty description clears the column
		upd.Description = models.OptionalString{Set: true}
		if d := trimToNil(req.Description); d != nil {
			upd.Description = models.NewOptionalString(*d)
		}
	}
	if req.Location != nil {
		upd.Location = trimmed(*req.Location)
	}
	if req.OrganizerID != nil {
		upd.OrganizerID = trimmed(*req.OrganizerID)
	}
	if req.EventDate != nil {
		t, err := ParseDate(*req.EventDate)
		if err != nil {
			return nil, fmt.Errorf("parse event date: %w", err)
		}
		t = t.UTC()
		upd.EventDate = &t
	}
	return upd, nil
}

func trimmed(s string) *string {
	t := strings.TrimSpace(s)
	return &t
}

func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

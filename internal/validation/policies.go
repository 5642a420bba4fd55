package validation

import (
	"strings"

	"hunttickets/internal/models"
)

const (
	termsError   = "Invalid terms and conditions content. Must be between 10-50000 characters with valid HTML structure"
	privacyError = "Invalid privacy policy content. Must be between 10-50000 characters with valid HTML structure"
	refundError  = "Invalid refund policy content. Must be between 10-50000 characters with valid HTML structure"
)

func ValidatePoliciesRequest(req *models.PoliciesRequest) Result {
	var errs []string

	if req.ProducerID == "" {
		errs = append(errs, "Producer ID is required")
	} else if !IsUUIDv4(req.ProducerID) {
		errs = append(errs, "Invalid producer ID format. Must be a valid UUID")
	}

	if req.TermsAndConditions != nil && !PolicyContent(*req.TermsAndConditions) {
		errs = append(errs, termsError)
	}
	if req.PrivacyPolicy != nil && !PolicyContent(*req.PrivacyPolicy) {
		errs = append(errs, privacyError)
	}
	if req.RefundPolicy != nil && !PolicyContent(*req.RefundPolicy) {
		errs = append(errs, refundError)
	}

	if !hasText(req.TermsAndConditions) && !hasText(req.PrivacyPolicy) && !hasText(req.RefundPolicy) {
		errs = append(errs, "At least one policy (terms_and_conditions, privacy_policy, or refund_policy) must be provided")
	}

	return newResult(errs)
}

// ValidatePoliciesUpdate requires at least one key to be present; a null
// value counts as present and clears that policy.
func ValidatePoliciesUpdate(upd *models.PoliciesUpdate) Result {
	var errs []string

	if upd.TermsAndConditions.Valid && !PolicyContent(upd.TermsAndConditions.Value) {
		errs = append(errs, termsError)
	}
	if upd.PrivacyPolicy.Valid && !PolicyContent(upd.PrivacyPolicy.Value) {
		errs = append(errs, privacyError)
	}
	if upd.RefundPolicy.Valid && !PolicyContent(upd.RefundPolicy.Value) {
		errs = append(errs, refundError)
	}

	if len(upd.Fields()) == 0 {
		errs = append(errs, "At least one policy field must be provided for update")
	}

	return newResult(errs)
}

// SanitizePoliciesRequest returns a copy with every policy text sanitized.
func SanitizePoliciesRequest(req *models.PoliciesRequest) *models.PoliciesRequest {
	return &models.PoliciesRequest{
		ProducerID:         strings.ToLower(strings.TrimSpace(req.ProducerID)),
		TermsAndConditions: SanitizePolicyContent(req.TermsAndConditions),
		PrivacyPolicy:      SanitizePolicyContent(req.PrivacyPolicy),
		RefundPolicy:       SanitizePolicyContent(req.RefundPolicy),
	}
}

// SanitizePoliciesUpdate sanitizes present values and keeps nulls as nulls.
func SanitizePoliciesUpdate(upd *models.PoliciesUpdate) *models.PoliciesUpdate {
	return &models.PoliciesUpdate{
		TermsAndConditions: sanitizeOptional(upd.TermsAndConditions),
		PrivacyPolicy:      sanitizeOptional(upd.PrivacyPolicy),
		RefundPolicy:       sanitizeOptional(upd.RefundPolicy),
	}
}

func sanitizeOptional(o models.OptionalString) models.OptionalString {
	if !o.Valid {
		return o
	}
	clean := SanitizePolicyContent(&o.Value)
	if clean == nil {
		return models.OptionalString{Set: true}
	}
	return models.NewOptionalString(*clean)
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}

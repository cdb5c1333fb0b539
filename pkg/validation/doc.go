// Package validation checks request payloads and workflow records with
// go-playground/validator struct tags.
//
// Failures come back as *ValidationError keyed by JSON field name, which the
// HTTP layer renders as a 400 with per-field details:
//
//	type selectPlanRequest struct {
//		PlanID string `json:"plan_id" validate:"required,max=64"`
//	}
//	if err := validation.Struct(req); err != nil { ... }
//
// decimal.Decimal fields validate as numbers, so `validate:"gt=0"` works on
// prices.
package validation

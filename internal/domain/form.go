package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultProgressStep is the increment used by the progress buttons and the form.
const DefaultProgressStep = 10

// FormMode selects create or update validation rules.
type FormMode int

const (
	FormCreate FormMode = iota
	FormUpdate
)

var validate = validator.New()

// OpportunityForm is what the create/edit form collects. Empty fields mean
// "not provided": default on create, no change on update.
type OpportunityForm struct {
	Title     string   `json:"title" validate:"max=255"`
	Value     *float64 `json:"value,omitempty" validate:"omitempty,gte=0"`
	Priority  string   `json:"priority,omitempty" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
	Progress  *int     `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	Stage     string   `json:"stage,omitempty" validate:"omitempty,oneof=PROSPECTION QUALIFICATION NEGOTIATION CLOSED"`
	Status    string   `json:"status,omitempty" validate:"omitempty,oneof=IN_PROGRESS WON LOST"`
	ContactID *int64   `json:"contactId,omitempty" validate:"omitempty,gt=0"`
}

// ContactRef is how the backend expects a contact reference in request bodies.
type ContactRef struct {
	ID int64 `json:"id"`
}

// OpportunityPayload is the request body for create and update. Nil fields are
// omitted from the JSON.
type OpportunityPayload struct {
	Title    *string     `json:"title,omitempty"`
	Value    *float64    `json:"value,omitempty"`
	Priority *Priority   `json:"priority,omitempty"`
	Progress *int        `json:"progress,omitempty"`
	Stage    *Stage      `json:"stage,omitempty"`
	Status   *Status     `json:"status,omitempty"`
	Contact  *ContactRef `json:"contact,omitempty"`
}

// ValidationError carries per-field messages for inline form display.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Normalize trims text and upper-cases enum fields.
func (f *OpportunityForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Priority = strings.ToUpper(strings.TrimSpace(f.Priority))
	f.Stage = strings.ToUpper(strings.TrimSpace(f.Stage))
	f.Status = strings.ToUpper(strings.TrimSpace(f.Status))
}

// Validate checks the form for mode. step is the progress step (0 disables the check).
func (f *OpportunityForm) Validate(mode FormMode, step int) error {
	f.Normalize()

	fields := map[string]string{}
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		for _, fe := range verrs {
			fields[jsonName(fe.Field())] = describe(fe)
		}
	}

	if mode == FormCreate && f.Title == "" {
		fields["title"] = "title is required"
	}
	if f.Progress != nil && step > 0 && *f.Progress%step != 0 {
		fields["progress"] = fmt.Sprintf("progress must be a multiple of %d", step)
	}
	if f.Status != "" && Status(f.Status).IsTerminal() && f.Stage != "" && Stage(f.Stage) != StageClosed {
		fields["status"] = ErrStatusRequiresClosed.Error()
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Payload converts a validated form into the request body.
func (f *OpportunityForm) Payload() OpportunityPayload {
	var p OpportunityPayload
	if f.Title != "" {
		title := f.Title
		p.Title = &title
	}
	if f.Value != nil {
		v := *f.Value
		p.Value = &v
	}
	if f.Priority != "" {
		pr := Priority(f.Priority)
		p.Priority = &pr
	}
	if f.Progress != nil {
		pg := *f.Progress
		p.Progress = &pg
	}
	if f.Stage != "" {
		st := Stage(f.Stage)
		p.Stage = &st
	}
	if f.Status != "" {
		s := Status(f.Status)
		p.Status = &s
	}
	if f.ContactID != nil && *f.ContactID > 0 {
		p.Contact = &ContactRef{ID: *f.ContactID}
	}
	return p
}

func jsonName(field string) string {
	switch field {
	case "ContactID":
		return "contactId"
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}

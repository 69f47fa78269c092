package form

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError describes one field that fails presentation-level checks.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors is returned by the Validate methods; it lists every failing field.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field failed.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

var fieldKeys = map[string]string{
	"Title":     FieldTitle,
	"StartDate": FieldStartDate,
	"EndDate":   FieldEndDate,
	"Status":    FieldStatus,
	"RoadmapID": FieldRoadmapID,
	"Points":    FieldPoints,
	"ImagePath": FieldImage,
}

var fieldLabels = map[string]string{
	FieldTitle:     "Title",
	FieldStartDate: "Start date",
	FieldEndDate:   "End date",
	FieldStatus:    "Status",
	FieldRoadmapID: "Roadmap",
	FieldPoints:    "Points",
	FieldImage:     "Event image",
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		key := fieldKeys[fe.StructField()]
		if key == "" {
			key = strings.ToLower(fe.StructField())
		}
		label := fieldLabels[key]
		if label == "" {
			label = fe.StructField()
		}
		var msg string
		switch fe.Tag() {
		case "required":
			msg = label + " is required"
		case "datetime":
			msg = label + " must be YYYY-MM-DD"
		case "gte":
			msg = label + " must not be negative"
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", label, fe.Param())
		case "file":
			msg = label + " must be an existing file"
		default:
			msg = fmt.Sprintf("%s is invalid", label)
		}
		out = append(out, FieldError{Field: key, Message: msg})
	}
	return out
}

// Validate runs the checks the form renderer enforces before it lets the user submit.
// Submit itself does not call it.
func (d RoadmapDraft) Validate() error {
	return translate(validatorInstance().Struct(d))
}

func (d EventDraft) Validate() error {
	return translate(validatorInstance().Struct(d))
}

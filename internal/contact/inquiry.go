// Package contact owns the inquiry form behind the "contact me" dialog and
// relays finished inquiries to an external form handler.
package contact

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// InquiryType is what the sender is reaching out about.
type InquiryType string

const (
	FullTime      InquiryType = "Full-time Job"
	Internship    InquiryType = "Internship"
	Freelance     InquiryType = "Freelance"
	Consulting    InquiryType = "Consulting"
	Collaboration InquiryType = "Collaboration"
	General       InquiryType = "General"
)

var inquiryLabels = map[InquiryType]string{
	FullTime:      "Full-time Job Opportunity",
	Internship:    "Internship Opportunity",
	Freelance:     "Freelance Project",
	Consulting:    "Consulting Work",
	Collaboration: "Collaboration",
	General:       "General Inquiry",
}

// InquiryTypes lists the types in the order the dialog offers them.
func InquiryTypes() []InquiryType {
	return []InquiryType{FullTime, Internship, Freelance, Consulting, Collaboration, General}
}

// Label is the human-readable option text.
func (t InquiryType) Label() string {
	if l, ok := inquiryLabels[t]; ok {
		return l
	}
	return string(t)
}

// Field names one input of the inquiry form.
type Field string

const (
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldCompany     Field = "company"
	FieldPosition    Field = "position"
	FieldInquiryType Field = "inquiryType"
	FieldMessage     Field = "message"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldName, FieldEmail, FieldCompany, FieldPosition, FieldInquiryType, FieldMessage}

// ParseField maps a form input name to a Field.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown form field %q", s)
}

// Inquiry is an in-memory, not yet submitted contact request. It is a value:
// every edit produces a new Inquiry.
type Inquiry struct {
	Name        string      `json:"name" validate:"required"`
	Email       string      `json:"email" validate:"required"`
	Company     string      `json:"company"`
	Position    string      `json:"position"`
	InquiryType InquiryType `json:"inquiryType" validate:"required,oneof='Full-time Job' Internship Freelance Consulting Collaboration General"`
	Message     string      `json:"message" validate:"required"`
}

var validate = validator.New()

// With returns a copy of f with exactly one field replaced.
func (f Inquiry) With(field Field, value string) (Inquiry, error) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldCompany:
		f.Company = value
	case FieldPosition:
		f.Position = value
	case FieldInquiryType:
		f.InquiryType = InquiryType(value)
	case FieldMessage:
		f.Message = value
	default:
		return f, fmt.Errorf("unknown form field %q", field)
	}
	return f, nil
}

// Get returns the current value of field.
func (f Inquiry) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldCompany:
		return f.Company
	case FieldPosition:
		return f.Position
	case FieldInquiryType:
		return string(f.InquiryType)
	case FieldMessage:
		return f.Message
	}
	return ""
}

// Complete reports whether name, email, inquiry type and message are all
// non-empty and the inquiry type is one the dialog offers. Formats are not
// checked.
func (f Inquiry) Complete() bool {
	return validate.Struct(f) == nil
}

// Subject is the mail subject the relay uses for this inquiry.
func (f Inquiry) Subject() string {
	return fmt.Sprintf("%s Inquiry from %s", f.InquiryType, f.Name)
}

// Payload is the body sent to the form relay.
type Payload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	InquiryType string `json:"inquiryType"`
	Message     string `json:"message"`
	Subject     string `json:"_subject"`
}

// Payload snapshots f for delivery.
func (f Inquiry) Payload() Payload {
	return Payload{
		Name:        f.Name,
		Email:       f.Email,
		Company:     f.Company,
		Position:    f.Position,
		InquiryType: string(f.InquiryType),
		Message:     f.Message,
		Subject:     f.Subject(),
	}
}

// Package models defines the core data structures shared across SchemeBot components.
package models

import "fmt"

// Gender is the closed set of normalized gender values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Genders lists every normalized gender value in canonical order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Field identifies one of the four demographic fields collected during intake.
type Field string

const (
	FieldName   Field = "name"
	FieldGender Field = "gender"
	FieldAge    Field = "age"
	FieldState  Field = "state"
)

// RequiredFields is the fixed collection order for the intake conversation.
var RequiredFields = []Field{FieldName, FieldGender, FieldAge, FieldState}

// Profile holds the demographic record collected from a user. A field is
// either unset (nil) or holds a normalized, validated value.
type Profile struct {
	Name   *string `json:"name"`
	Gender *Gender `json:"gender"`
	Age    *int    `json:"age"`
	State  *string `json:"state"`
}

// FieldValue is a typed value for exactly one profile field. Which member is
// meaningful is determined by Field.
type FieldValue struct {
	Field  Field
	Text   string // name or state
	Gender Gender
	Age    int
}

// Apply sets the field carried by v on the profile.
func (p *Profile) Apply(v FieldValue) {
	switch v.Field {
	case FieldName:
		name := v.Text
		p.Name = &name
	case FieldGender:
		gender := v.Gender
		p.Gender = &gender
	case FieldAge:
		age := v.Age
		p.Age = &age
	case FieldState:
		state := v.Text
		p.State = &state
	}
}

// IsComplete reports whether all four fields are set.
func (p *Profile) IsComplete() bool {
	return p.Name != nil && p.Gender != nil && p.Age != nil && p.State != nil
}

// NextRequiredField returns the next unset field in collection order.
// ok is false once the profile is complete.
func (p *Profile) NextRequiredField() (field Field, ok bool) {
	switch {
	case p.Name == nil:
		return FieldName, true
	case p.Gender == nil:
		return FieldGender, true
	case p.Age == nil:
		return FieldAge, true
	case p.State == nil:
		return FieldState, true
	}
	return "", false
}

// CompletionFlags reports per-field completion, used as context for intent
// classification.
func (p *Profile) CompletionFlags() map[Field]bool {
	return map[Field]bool{
		FieldName:   p.Name != nil,
		FieldGender: p.Gender != nil,
		FieldAge:    p.Age != nil,
		FieldState:  p.State != nil,
	}
}

// String renders the profile for prompt context and logging.
func (p *Profile) String() string {
	name, gender, age, state := "-", "-", "-", "-"
	if p.Name != nil {
		name = *p.Name
	}
	if p.Gender != nil {
		gender = string(*p.Gender)
	}
	if p.Age != nil {
		age = fmt.Sprintf("%d", *p.Age)
	}
	if p.State != nil {
		state = *p.State
	}
	return fmt.Sprintf("Name: %s, Gender: %s, Age: %s, State: %s", name, gender, age, state)
}

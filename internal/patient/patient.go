// Package patient holds the assessment input model collected by the
// multi-step form, along with its per-section validation rules.
package patient

import "strings"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type DiabetesType string

const (
	DiabetesType1           DiabetesType = "type1"
	DiabetesType2           DiabetesType = "type2"
	DiabetesTypeGestational DiabetesType = "gestational"
	DiabetesTypeOther       DiabetesType = "other"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

// IsSedentary reports whether the level is sedentary, ignoring case.
func (a ActivityLevel) IsSedentary() bool {
	return strings.EqualFold(string(a), string(ActivitySedentary))
}

// Data is one assessment's input. Every field is optional so that a form
// filled in section by section can be stored between steps; nil means the
// user has not answered yet.
type Data struct {
	Age    *int    `json:"age,omitempty" validate:"required,gte=1,lte=120"`
	Gender *Gender `json:"gender,omitempty" validate:"required,oneof=male female other"`

	DiabetesType        *DiabetesType `json:"diabetesType,omitempty" validate:"required,oneof=type1 type2 gestational other"`
	YearsSinceDiagnosis *int          `json:"yearsSinceDiagnosis,omitempty" validate:"required,gte=0"`

	HbA1c                  *float64 `json:"hba1c,omitempty" validate:"omitempty,gte=3,lte=20"`
	BMI                    *float64 `json:"bmi,omitempty" validate:"omitempty,gte=10,lte=60"`
	SystolicBP             *int     `json:"systolicBP,omitempty" validate:"omitempty,gte=70,lte=200"`
	DiastolicBP            *int     `json:"diastolicBP,omitempty" validate:"omitempty,gte=40,lte=130"`
	FastingBloodSugar      *int     `json:"fastingBloodSugar,omitempty" validate:"omitempty,gte=50,lte=400"`
	PostprandialBloodSugar *int     `json:"postprandialBloodSugar,omitempty" validate:"omitempty,gte=50,lte=500"`

	Smoking               *bool          `json:"smoking,omitempty"`
	PhysicalActivityLevel *ActivityLevel `json:"physicalActivityLevel,omitempty" validate:"required,oneof=sedentary light moderate active"`
	FamilyHistoryDR       *bool          `json:"familyHistoryDR,omitempty"`
}

// IsSmoker treats an unanswered smoking question as false.
func (d Data) IsSmoker() bool {
	return d.Smoking != nil && *d.Smoking
}

// HasFamilyHistory treats an unanswered family-history question as false.
func (d Data) HasFamilyHistory() bool {
	return d.FamilyHistoryDR != nil && *d.FamilyHistoryDR
}

// IsSedentary is true only when an activity level was given and it is sedentary.
func (d Data) IsSedentary() bool {
	return d.PhysicalActivityLevel != nil && d.PhysicalActivityLevel.IsSedentary()
}

// Int, Float, Bool and Ptr build optional fields inline, mostly for tests and
// fixtures.
func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

func Bool(v bool) *bool { return &v }

func Ptr[T ~string](v T) *T { return &v }

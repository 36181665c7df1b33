package patient

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Section is one step of the assessment form.
type Section string

const (
	SectionDemographics Section = "demographics"
	SectionDiabetes     Section = "diabetes"
	SectionClinical     Section = "clinical"
	SectionLifestyle    Section = "lifestyle"
)

// Sections lists the form steps in the order the user completes them.
var Sections = []Section{SectionDemographics, SectionDiabetes, SectionClinical, SectionLifestyle}

var sectionFields = map[Section][]string{
	SectionDemographics: {"Age", "Gender"},
	SectionDiabetes:     {"DiabetesType", "YearsSinceDiagnosis"},
	SectionClinical:     {"HbA1c", "BMI", "SystolicBP", "DiastolicBP", "FastingBloodSugar", "PostprandialBloodSugar"},
	SectionLifestyle:    {"PhysicalActivityLevel", "Smoking", "FamilyHistoryDR"},
}

type fieldMessages struct {
	required string
	invalid  string
}

var messages = map[string]fieldMessages{
	"Age":                    {"Age is required", "Age must be between 1 and 120"},
	"Gender":                 {"Gender is required", "Gender must be male, female, or other"},
	"DiabetesType":           {"Diabetes type is required", "Diabetes type must be type1, type2, gestational, or other"},
	"YearsSinceDiagnosis":    {"Years since diagnosis is required", "Cannot be negative"},
	"HbA1c":                  {"", "HbA1c should be between 3% and 20%"},
	"BMI":                    {"", "BMI should be between 10 and 60"},
	"SystolicBP":             {"", "Systolic BP should be between 70 and 200"},
	"DiastolicBP":            {"", "Diastolic BP should be between 40 and 130"},
	"FastingBloodSugar":      {"", "Fasting blood sugar should be between 50 and 400"},
	"PostprandialBloodSugar": {"", "Postprandial blood sugar should be between 50 and 500"},
	"PhysicalActivityLevel":  {"Physical activity level is required", "Physical activity level must be sedentary, light, moderate, or active"},
}

// ValidationError reports form fields that are missing or outside their
// clinical range. Fields is keyed by the JSON field name.
type ValidationError struct {
	Section Section
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	if e.Section == "" {
		return "validation failed: " + strings.Join(parts, "; ")
	}
	return fmt.Sprintf("validation failed in %s: %s", e.Section, strings.Join(parts, "; "))
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// ParseSection resolves a section name as used in URLs and CLI flags.
func ParseSection(name string) (Section, bool) {
	s := Section(strings.ToLower(strings.TrimSpace(name)))
	_, ok := sectionFields[s]
	return s, ok
}

// Next returns the section after s, or "" when s is the last one.
func (s Section) Next() Section {
	for i, sec := range Sections {
		if sec == s && i+1 < len(Sections) {
			return Sections[i+1]
		}
	}
	return ""
}

// ValidateSection checks only the fields collected by the given section.
// It returns nil or a *ValidationError.
func (d Data) ValidateSection(section Section) error {
	fields, ok := sectionFields[section]
	if !ok {
		return fmt.Errorf("unknown form section %q", section)
	}
	found := d.fieldErrors()

	var verr *ValidationError
	for _, name := range fields {
		msg, bad := found[name]
		if !bad {
			continue
		}
		if verr == nil {
			verr = &ValidationError{Section: section, Fields: map[string]string{}}
		}
		verr.Fields[msg.field] = msg.text
	}
	if verr == nil {
		return nil
	}
	return verr
}

// Validate checks every section in form order and reports the first one
// that fails, mirroring how the form blocks on the earliest incomplete step.
func (d Data) Validate() error {
	for _, s := range Sections {
		if err := d.ValidateSection(s); err != nil {
			return err
		}
	}
	return nil
}

type fieldProblem struct {
	field string
	text  string
}

func (d Data) fieldErrors() map[string]fieldProblem {
	out := map[string]fieldProblem{}
	err := validatorInstance().Struct(d)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = fieldProblem{field: "_", text: err.Error()}
		return out
	}
	for _, fe := range verrs {
		m := messages[fe.StructField()]
		text := m.invalid
		if fe.Tag() == "required" && m.required != "" {
			text = m.required
		}
		if text == "" {
			text = fe.Error()
		}
		out[fe.StructField()] = fieldProblem{field: fe.Field(), text: text}
	}
	return out
}

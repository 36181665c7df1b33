package prediction

import (
	"math"
	"strings"

	"github.com/Skufu/drrisk/internal/patient"
)

// Values used when the form left a field blank.
const (
	defaultAge                 = 40
	defaultYearsSinceDiagnosis = 1
	defaultHbA1c               = 7.0
	defaultBMI                 = 26.0
)

// MapToBackend derives the backend payload from a possibly incomplete
// patient model. It never fails: blanks take the defaults above, and every
// proxy feature is rounded half up then clamped to the range the model saw
// in training.
func MapToBackend(p patient.Data) Payload {
	age := defaultAge
	if p.Age != nil {
		age = *p.Age
	}
	years := float64(defaultYearsSinceDiagnosis)
	if p.YearsSinceDiagnosis != nil {
		years = float64(*p.YearsSinceDiagnosis)
	}
	hba1c := defaultHbA1c
	if p.HbA1c != nil {
		hba1c = *p.HbA1c
	}
	bmi := defaultBMI
	if p.BMI != nil {
		bmi = *p.BMI
	}
	activity := patient.ActivitySedentary
	if p.PhysicalActivityLevel != nil && *p.PhysicalActivityLevel != "" {
		activity = *p.PhysicalActivityLevel
	}
	smoker := p.IsSmoker()
	familyHistory := p.HasFamilyHistory()
	sedentary := activity.IsSedentary()

	gender := Male
	if p.Gender != nil && strings.EqualFold(string(*p.Gender), string(patient.GenderFemale)) {
		gender = Female
	}

	insulin := No
	if (p.DiabetesType != nil && *p.DiabetesType == patient.DiabetesType1) || hba1c >= 9 {
		insulin = Yes
	}

	return Payload{
		Age:              age,
		Gender:           gender,
		TimeInHospital:   proxy(years/2+(hba1c-7), 0, 30),
		NumLabProcedures: proxy(20+years*2+(hba1c-6)*4, 10, 80),
		NumMedications:   proxy(3+years/2+(bmi-22)/2, 1, 30),
		NumberOutpatient: proxy(years/3+(hba1c-6), 0, 10),
		NumberEmergency:  proxy(flag(hba1c > 9, 2)+flag(smoker, 1)+flag(sedentary, 1), 0, 5),
		NumberInpatient:  proxy(years/5+flag(hba1c > 8, 1)+flag(familyHistory, 1), 0, 5),
		NumberDiagnoses:  proxy(3+flag(years > 5, 1)+flag(bmi > 30, 1)+flag(smoker, 1), 1, 10),
		Insulin:          insulin,
		DiabetesMed:      Yes,
	}
}

func proxy(v float64, lo, hi int) int {
	return clampInt(roundHalfUp(v), lo, hi)
}

// roundHalfUp matches the rounding the backend contract was defined with:
// halves go towards positive infinity, so 2.5 -> 3 and -2.5 -> -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func flag(cond bool, weight float64) float64 {
	if cond {
		return weight
	}
	return 0
}

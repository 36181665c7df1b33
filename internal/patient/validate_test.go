package patient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeData() Data {
	return Data{
		Age:                   Int(55),
		Gender:                Ptr(GenderFemale),
		DiabetesType:          Ptr(DiabetesType2),
		YearsSinceDiagnosis:   Int(0),
		PhysicalActivityLevel: Ptr(ActivityModerate),
	}
}

func TestValidate_Complete(t *testing.T) {
	assert.NoError(t, completeData().Validate())
}

func TestValidateSection_Demographics(t *testing.T) {
	err := Data{}.ValidateSection(SectionDemographics)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, SectionDemographics, verr.Section)
	assert.Equal(t, map[string]string{
		"age":    "Age is required",
		"gender": "Gender is required",
	}, verr.Fields)

	err = Data{Age: Int(121), Gender: Ptr(GenderMale)}.ValidateSection(SectionDemographics)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Age must be between 1 and 120", verr.Fields["age"])
}

func TestValidateSection_IgnoresOtherSections(t *testing.T) {
	d := Data{Age: Int(30), Gender: Ptr(GenderOther), HbA1c: Float(25)}
	assert.NoError(t, d.ValidateSection(SectionDemographics))
	assert.Error(t, d.ValidateSection(SectionClinical))
}

func TestValidateSection_Diabetes(t *testing.T) {
	d := Data{DiabetesType: Ptr(DiabetesType("type3")), YearsSinceDiagnosis: Int(-1)}
	err := d.ValidateSection(SectionDiabetes)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Cannot be negative", verr.Fields["yearsSinceDiagnosis"])
	assert.Contains(t, verr.Fields["diabetesType"], "must be")
}

func TestValidateSection_ClinicalOptionalRanges(t *testing.T) {
	assert.NoError(t, Data{}.ValidateSection(SectionClinical))

	d := Data{HbA1c: Float(2.9), BMI: Float(61), SystolicBP: Int(120)}
	err := d.ValidateSection(SectionClinical)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"hba1c": "HbA1c should be between 3% and 20%",
		"bmi":   "BMI should be between 10 and 60",
	}, verr.Fields)
}

func TestValidateSection_Lifestyle(t *testing.T) {
	err := Data{Smoking: Bool(true)}.ValidateSection(SectionLifestyle)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Physical activity level is required", verr.Fields["physicalActivityLevel"])
}

func TestValidateSection_Unknown(t *testing.T) {
	err := Data{}.ValidateSection(Section("payment"))
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestValidate_ReportsFirstFailingSection(t *testing.T) {
	d := completeData()
	d.DiabetesType = nil
	d.PhysicalActivityLevel = nil

	var verr *ValidationError
	require.True(t, errors.As(d.Validate(), &verr))
	assert.Equal(t, SectionDiabetes, verr.Section)
	assert.Contains(t, verr.Error(), "diabetesType: Diabetes type is required")
}

func TestSectionNavigation(t *testing.T) {
	assert.Equal(t, SectionDiabetes, SectionDemographics.Next())
	assert.Equal(t, SectionLifestyle, SectionClinical.Next())
	assert.Equal(t, Section(""), SectionLifestyle.Next())

	s, ok := ParseSection(" Clinical ")
	assert.True(t, ok)
	assert.Equal(t, SectionClinical, s)

	_, ok = ParseSection("billing")
	assert.False(t, ok)
}

func TestActivityHelpers(t *testing.T) {
	assert.True(t, ActivityLevel("Sedentary").IsSedentary())
	assert.False(t, Data{}.IsSedentary())
	assert.False(t, Data{}.IsSmoker())
	assert.True(t, Data{FamilyHistoryDR: Bool(true)}.HasFamilyHistory())
}

package prediction

import (
	"fmt"
	"math"
	"strings"

	"github.com/Skufu/drrisk/internal/patient"
)

const (
	DefaultAlgorithm = "Deep Learning Neural Network (MLPClassifier)"

	// Offline evaluation figures for the deployed model, not per-patient.
	ModelAccuracy = 94.95
	ModelROCAUC   = 0.982

	defaultRecommendation = "Maintain regular check-ups and follow your physician's advice."
	unsuccessfulResponse  = "Backend returned an unsuccessful prediction response."
)

const (
	adviceGlucose  = "Focus on improving blood glucose control through medication adherence and dietary modifications."
	adviceWeight   = "Consider weight management strategies to reduce overall diabetes complications risk."
	adviceSmoking  = "Smoking cessation is strongly recommended to reduce diabetic retinopathy risk."
	adviceActivity = "Increase physical activity levels to improve glycemic control and cardiovascular health."
)

// Normalize turns a raw backend reply into a RiskReport, annotating it with
// factors and advice drawn from the patient's own answers. It either returns
// a complete report or an *InvalidResponseError.
func Normalize(raw RawResponse, original patient.Data) (*RiskReport, error) {
	if !raw.Success || raw.Probability == nil || !isFinite(*raw.Probability) {
		msg := unsuccessfulResponse
		if raw.Error != nil && *raw.Error != "" {
			msg = *raw.Error
		}
		return nil, &InvalidResponseError{Message: msg}
	}

	probability := ClampProbability(*raw.Probability)

	level := ""
	if raw.RiskLevel != nil {
		level = *raw.RiskLevel
	}

	recommendation := defaultRecommendation
	if raw.Recommendation != nil && *raw.Recommendation != "" {
		recommendation = *raw.Recommendation
	}

	algorithm := DefaultAlgorithm
	if raw.Model != nil && *raw.Model != "" {
		algorithm = *raw.Model
	}

	return &RiskReport{
		RiskProbability:     probability,
		RiskLevel:           ClassifyRiskLevel(level),
		ContributingFactors: contributingFactors(original, probability),
		Recommendations:     append([]string{recommendation}, advisories(original)...),
		ModelInfo: ModelInfo{
			Algorithm: algorithm,
			Accuracy:  ModelAccuracy,
			ROCAUC:    ModelROCAUC,
		},
	}, nil
}

// ClampProbability maps a percentage into [0,100]; NaN and infinities become 0.
func ClampProbability(p float64) float64 {
	if !isFinite(p) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}

// ClassifyRiskLevel reads the backend's free-text risk label. Matching is a
// case-insensitive substring test with HIGH taking precedence over MODERATE
// over LOW, so "VERY LOW RISK" is Low and a label naming both HIGH and LOW
// is High. Unrecognised or empty labels are Low.
func ClassifyRiskLevel(label string) RiskLevel {
	upper := strings.ToUpper(label)
	switch {
	case strings.Contains(upper, "HIGH"):
		return RiskHigh
	case strings.Contains(upper, "MODERATE"):
		return RiskModerate
	case strings.Contains(upper, "LOW"):
		return RiskLow
	default:
		return RiskLow
	}
}

func contributingFactors(p patient.Data, probability float64) []ContributingFactor {
	factors := []ContributingFactor{}

	if p.HbA1c != nil {
		factors = append(factors, ContributingFactor{
			Factor: "HbA1c Level",
			Value:  fmt.Sprintf("%.1f%%", *p.HbA1c),
			Impact: tier(*p.HbA1c, 9, 7.5),
		})
	}
	if p.YearsSinceDiagnosis != nil {
		factors = append(factors, ContributingFactor{
			Factor: "Diabetes Duration",
			Value:  fmt.Sprintf("%d years", *p.YearsSinceDiagnosis),
			Impact: tier(float64(*p.YearsSinceDiagnosis), 15, 8),
		})
	}
	if p.BMI != nil {
		factors = append(factors, ContributingFactor{
			Factor: "Body Mass Index",
			Value:  fmt.Sprintf("%.1f", *p.BMI),
			Impact: tier(*p.BMI, 30, 27),
		})
	}
	if p.SystolicBP != nil && p.DiastolicBP != nil && (*p.SystolicBP >= 140 || *p.DiastolicBP >= 90) {
		factors = append(factors, ContributingFactor{
			Factor: "Blood Pressure",
			Value:  fmt.Sprintf("%d/%d mmHg", *p.SystolicBP, *p.DiastolicBP),
			Impact: ImpactMedium,
		})
	}
	if p.IsSmoker() {
		factors = append(factors, ContributingFactor{Factor: "Smoking Status", Value: "Current smoker", Impact: ImpactHigh})
	}
	if p.HasFamilyHistory() {
		factors = append(factors, ContributingFactor{Factor: "Family History", Value: "Positive", Impact: ImpactMedium})
	}
	if p.IsSedentary() {
		factors = append(factors, ContributingFactor{Factor: "Physical Activity", Value: "Sedentary lifestyle", Impact: ImpactMedium})
	}

	if len(factors) == 0 {
		factors = append(factors, ContributingFactor{
			Factor: "Overall Risk Profile",
			Value:  fmt.Sprintf("%.1f%% estimated risk", probability),
			Impact: tier(probability, 70, 40),
		})
	}
	return factors
}

func advisories(p patient.Data) []string {
	var out []string
	if p.HbA1c != nil && *p.HbA1c >= 7 {
		out = append(out, adviceGlucose)
	}
	if p.BMI != nil && *p.BMI >= 27 {
		out = append(out, adviceWeight)
	}
	if p.IsSmoker() {
		out = append(out, adviceSmoking)
	}
	if p.IsSedentary() {
		out = append(out, adviceActivity)
	}
	return out
}

func tier(v, high, medium float64) Impact {
	switch {
	case v >= high:
		return ImpactHigh
	case v >= medium:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

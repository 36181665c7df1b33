// Package prediction translates patient answers into the schema of the
// external retinopathy model, calls it, and turns its reply into a risk
// report the UI can render.
package prediction

type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

type BackendGender string

const (
	Male   BackendGender = "Male"
	Female BackendGender = "Female"
)

// Payload is the fixed request body of POST /predict. The model was trained
// on hospital-utilisation features, so most fields are proxies derived by
// MapToBackend.
type Payload struct {
	Age              int           `json:"age"`
	Gender           BackendGender `json:"gender"`
	TimeInHospital   int           `json:"time_in_hospital"`
	NumLabProcedures int           `json:"num_lab_procedures"`
	NumMedications   int           `json:"num_medications"`
	NumberOutpatient int           `json:"number_outpatient"`
	NumberEmergency  int           `json:"number_emergency"`
	NumberInpatient  int           `json:"number_inpatient"`
	NumberDiagnoses  int           `json:"number_diagnoses"`
	Insulin          YesNo         `json:"insulin"`
	DiabetesMed      YesNo         `json:"diabetesMed"`
}

// RawResponse is the body returned by the prediction backend.
type RawResponse struct {
	Success          bool     `json:"success"`
	Probability      *float64 `json:"probability,omitempty"`
	RiskLevel        *string  `json:"risk_level,omitempty"`
	Recommendation   *string  `json:"recommendation,omitempty"`
	Model            *string  `json:"model,omitempty"`
	Error            *string  `json:"error,omitempty"`
	FeaturesUsed     []string `json:"features_used,omitempty"`
	RequiredFeatures []string `json:"required_features,omitempty"`
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

type ContributingFactor struct {
	Factor string `json:"factor"`
	Value  string `json:"value"`
	Impact Impact `json:"impact"`
}

type ModelInfo struct {
	Algorithm string  `json:"algorithm"`
	Accuracy  float64 `json:"accuracy"`
	ROCAUC    float64 `json:"rocAuc"`
}

// RiskReport is the normalized outcome of one prediction. It is built once
// per submission and not modified afterwards.
type RiskReport struct {
	RiskProbability     float64              `json:"riskProbability"`
	RiskLevel           RiskLevel            `json:"riskLevel"`
	ContributingFactors []ContributingFactor `json:"contributingFactors"`
	Recommendations     []string             `json:"recommendations"`
	ModelInfo           ModelInfo            `json:"modelInfo"`
}

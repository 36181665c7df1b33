// Package history records a summary of every completed assessment so a user
// can review past risk results.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/drrisk/internal/patient"
	"github.com/Skufu/drrisk/internal/prediction"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Summary struct {
	ID              uuid.UUID            `json:"id"`
	UserID          string               `json:"userId"`
	CreatedAt       time.Time            `json:"createdAt"`
	RiskProbability float64              `json:"riskProbability"`
	RiskLevel       prediction.RiskLevel `json:"riskLevel"`
	Age             int                  `json:"age"`
	DiabetesType    string               `json:"diabetesType"`
	HbA1c           *float64             `json:"hba1c"`
}

// Store persists summaries. ListByUser returns newest first.
type Store interface {
	Insert(ctx context.Context, s Summary) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Summary, error)
}

// NewSummary builds the record written after a successful prediction.
func NewSummary(userID string, p patient.Data, r prediction.RiskReport) Summary {
	s := Summary{
		ID:              uuid.New(),
		UserID:          userID,
		CreatedAt:       time.Now().UTC(),
		RiskProbability: r.RiskProbability,
		RiskLevel:       r.RiskLevel,
		HbA1c:           p.HbA1c,
	}
	if p.Age != nil {
		s.Age = *p.Age
	}
	if p.DiabetesType != nil {
		s.DiabetesType = string(*p.DiabetesType)
	}
	return s
}

// ClampLimit keeps a requested page size within [1, MaxListLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

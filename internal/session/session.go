// Package session keeps the state that must survive between form steps: the
// in-progress patient model and the most recent risk report. Both are
// replaced wholesale on every save.
package session

import (
	"context"
	"errors"

	"github.com/Skufu/drrisk/internal/patient"
	"github.com/Skufu/drrisk/internal/prediction"
)

// ErrNotFound is returned when a session has no stored value for the key.
var ErrNotFound = errors.New("session: not found")

type Store interface {
	SavePatient(ctx context.Context, sessionID string, p patient.Data) error
	LoadPatient(ctx context.Context, sessionID string) (patient.Data, error)
	SaveReport(ctx context.Context, sessionID string, r prediction.RiskReport) error
	LoadReport(ctx context.Context, sessionID string) (*prediction.RiskReport, error)
	// Clear drops everything held for the session.
	Clear(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

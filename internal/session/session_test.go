package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/drrisk/internal/patient"
	"github.com/Skufu/drrisk/internal/prediction"
)

func sampleReport() prediction.RiskReport {
	return prediction.RiskReport{
		RiskProbability: 42,
		RiskLevel:       prediction.RiskModerate,
		ContributingFactors: []prediction.ContributingFactor{
			{Factor: "HbA1c Level", Value: "8.0%", Impact: prediction.ImpactMedium},
		},
		Recommendations: []string{"Schedule a comprehensive eye examination within 1 month."},
		ModelInfo:       prediction.ModelInfo{Algorithm: prediction.DefaultAlgorithm, Accuracy: 94.95, ROCAUC: 0.982},
	}
}

func TestMemoryStore_OverwritesWholesale(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	_, err := s.LoadPatient(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SavePatient(ctx, "abc", patient.Data{Age: patient.Int(50), HbA1c: patient.Float(8)}))
	require.NoError(t, s.SavePatient(ctx, "abc", patient.Data{Age: patient.Int(51)}))

	got, err := s.LoadPatient(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 51, *got.Age)
	assert.Nil(t, got.HbA1c, "second save must not merge with the first")

	require.NoError(t, s.SaveReport(ctx, "abc", sampleReport()))
	r, err := s.LoadReport(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, prediction.RiskModerate, r.RiskLevel)

	require.NoError(t, s.Clear(ctx, "abc"))
	_, err = s.LoadReport(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	require.NoError(t, s.SaveReport(ctx, "one", sampleReport()))
	_, err := s.LoadReport(ctx, "two")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.SavePatient(ctx, "abc", patient.Data{Age: patient.Int(50)}))
	now = now.Add(2 * time.Minute)

	_, err := s.LoadPatient(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_SaveAndLoadPatient(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisStore(db, 24*time.Hour)
	ctx := context.Background()

	p := patient.Data{Age: patient.Int(60), Smoking: patient.Bool(true)}
	data, _ := json.Marshal(p)

	mock.ExpectSet("session:abc:patient", data, 24*time.Hour).SetVal("OK")
	mock.ExpectGet("session:abc:patient").SetVal(string(data))

	require.NoError(t, s.SavePatient(ctx, "abc", p))
	got, err := s.LoadPatient(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ReportRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisStore(db, time.Hour)
	ctx := context.Background()

	r := sampleReport()
	data, _ := json.Marshal(r)

	mock.ExpectSet("session:abc:report", data, time.Hour).SetVal("OK")
	mock.ExpectGet("session:abc:report").SetVal(string(data))

	require.NoError(t, s.SaveReport(ctx, "abc", r))
	got, err := s.LoadReport(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, r, *got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Missing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisStore(db, time.Hour)

	mock.ExpectGet("session:abc:report").RedisNil()

	_, err := s.LoadReport(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_SetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisStore(db, time.Hour)

	p := patient.Data{Age: patient.Int(60)}
	data, _ := json.Marshal(p)
	mock.ExpectSet("session:abc:patient", data, time.Hour).SetErr(errors.New("redis connection error"))

	err := s.SavePatient(context.Background(), "abc", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis connection error")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Clear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()
	s := NewRedisStore(db, time.Hour)

	mock.ExpectDel("session:abc:patient", "session:abc:report").SetVal(2)

	require.NoError(t, s.Clear(context.Background(), "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package evaluator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"triage-bridge/internal/models"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	e, err := NewEvaluator(models.DefaultSignalConfigs(), zap.NewNop())
	require.NoError(t, err)
	return e
}

func newTestSession(t *testing.T) *models.PatientSession {
	return &models.PatientSession{
		SessionID: uuid.New().String(),
		Patient: models.PatientInfo{
			Name: "Test Patient",
			Age:  "45",
		},
		Safety: models.SafetyCheck{
			Airway:   models.AnswerNo,
			Bleeding: models.AnswerNo,
		},
		MainSymptom: models.SymptomBreathingIssue,
		Step:        models.StepSummary,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func appendValues(t *testing.T, session *models.PatientSession, signal models.Signal, values ...float64) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, v := range values {
		err := session.Vitals.Append(models.VitalReading{
			Signal:     signal,
			Value:      v,
			RecordedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
}

func TestNewEvaluator_MissingSignalConfig(t *testing.T) {
	signals := models.DefaultSignalConfigs()
	delete(signals, models.SignalSpO2)

	_, err := NewEvaluator(signals, zap.NewNop())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing signal config")
}

func TestEvaluate_NilSession(t *testing.T) {
	e := newTestEvaluator(t)

	_, err := e.Evaluate(nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session is required")
}

func TestEvaluate_StableSession(t *testing.T) {
	e := newTestEvaluator(t)
	session := newTestSession(t)
	appendValues(t, session, models.SignalHeartRate, 72, 74, 73)
	appendValues(t, session, models.SignalSpO2, 98, 97, 98)
	appendValues(t, session, models.SignalPainScore, 2, 2, 1)

	result, err := e.Evaluate(session)

	require.NoError(t, err)
	assert.Equal(t, models.StatusMonitor, result.OverallStatus)
	assert.Equal(t, models.DecisionStable, result.Decision)
	assert.Equal(t, 0, result.WorseningCount)
	assert.Equal(t, 0, result.RedFlagCount)
	assert.Empty(t, result.Flags)
	assert.Empty(t, result.Reasons)
	assert.Len(t, result.Signals, 3)
	assert.Equal(t, "Pulmonologist", result.Specialist)
	assert.NotEmpty(t, result.ResultID)
	assert.Equal(t, session.SessionID, result.SessionID)
}

func TestEvaluate_DeterioratingSession(t *testing.T) {
	// 原始应用的模拟病程：三项信号同时恶化且心率越过红区
	e := newTestEvaluator(t)
	session := newTestSession(t)
	appendValues(t, session, models.SignalHeartRate, 75, 82, 95, 110, 125, 135)
	appendValues(t, session, models.SignalSpO2, 98, 97, 95, 92, 89, 87)
	appendValues(t, session, models.SignalPainScore, 2, 3, 5, 7, 8, 9)

	result, err := e.Evaluate(session)

	require.NoError(t, err)
	assert.Equal(t, models.StatusRedFlag, result.OverallStatus)
	assert.Equal(t, models.DecisionEmergency, result.Decision)
	assert.GreaterOrEqual(t, result.WorseningCount, 2)
	assert.GreaterOrEqual(t, result.RedFlagCount, 2) // HR 135 > 130, pain 9 > 8
	assert.NotEmpty(t, result.Reasons)

	// 每个信号最多一条标记
	seen := make(map[models.Signal]int)
	for _, flag := range result.Flags {
		seen[flag.Signal]++
	}
	for signal, count := range seen {
		assert.Equal(t, 1, count, "signal %s has multiple flags", signal)
	}
}

func TestEvaluate_WorseningOnlyIsUrgent(t *testing.T) {
	e := newTestEvaluator(t)
	session := newTestSession(t)
	appendValues(t, session, models.SignalSpO2, 98, 95, 92)

	result, err := e.Evaluate(session)

	require.NoError(t, err)
	assert.Equal(t, models.StatusRedFlag, result.OverallStatus)
	assert.Equal(t, models.DecisionUrgent, result.Decision)
	assert.Equal(t, 1, result.WorseningCount)
	assert.Equal(t, 0, result.RedFlagCount)
	require.Len(t, result.Flags, 1)
	assert.Equal(t, models.SeverityWarning, result.Flags[0].Severity)
}

func TestEvaluate_SafetyRedFlagForcesEmergency(t *testing.T) {
	// 气道问询回答 Yes：即使生命体征平稳也强制 EMERGENCY
	e := newTestEvaluator(t)
	session := newTestSession(t)
	session.Safety.Airway = models.AnswerYes
	appendValues(t, session, models.SignalHeartRate, 72, 73)

	result, err := e.Evaluate(session)

	require.NoError(t, err)
	assert.Equal(t, models.DecisionEmergency, result.Decision)
	// 整体状态仍由信号评估决定
	assert.Equal(t, models.StatusMonitor, result.OverallStatus)
}

func TestEvaluate_SkipsSignalsWithoutReadings(t *testing.T) {
	e := newTestEvaluator(t)
	session := newTestSession(t)
	appendValues(t, session, models.SignalHeartRate, 75)

	result, err := e.Evaluate(session)

	require.NoError(t, err)
	assert.Len(t, result.Signals, 1)
	assert.Equal(t, models.SignalHeartRate, result.Signals[0].Signal)
}

func TestEvaluate_SingleReadingPerSignalNoTrendFlags(t *testing.T) {
	// 每个信号只有一条读数：不产生趋势标记
	e := newTestEvaluator(t)
	session := newTestSession(t)
	appendValues(t, session, models.SignalHeartRate, 75)
	appendValues(t, session, models.SignalSpO2, 98)
	appendValues(t, session, models.SignalPainScore, 2)

	result, err := e.Evaluate(session)

	require.NoError(t, err)
	assert.Empty(t, result.Flags)
	for _, sr := range result.Signals {
		assert.Equal(t, models.TrendInsufficientData, sr.Trend)
	}
}

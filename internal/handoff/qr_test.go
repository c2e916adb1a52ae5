package handoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage-bridge/internal/models"
)

func handoffSession(t *testing.T) *models.PatientSession {
	session := &models.PatientSession{
		SessionID: "session-123",
		Patient: models.PatientInfo{
			Name: "Jane Doe",
			Age:  "45",
		},
		MainSymptom: models.SymptomBreathingIssue,
		Step:        models.StepSummary,
	}
	now := time.Now()
	for _, r := range []models.VitalReading{
		{Signal: models.SignalHeartRate, Value: 95, RecordedAt: now},
		{Signal: models.SignalSpO2, Value: 92, RecordedAt: now},
	} {
		require.NoError(t, session.Vitals.Append(r))
	}
	return session
}

func handoffResult() *models.TriageResult {
	return &models.TriageResult{
		ResultID:      "result-1",
		SessionID:     "session-123",
		OverallStatus: models.StatusRedFlag,
		Decision:      models.DecisionUrgent,
		Specialist:    "Pulmonologist",
	}
}

func TestBuildPayload_Format(t *testing.T) {
	payload, err := BuildPayload(handoffSession(t), handoffResult())

	require.NoError(t, err)
	assert.Equal(t,
		"NAME:Jane Doe|AGE:45|STATUS:RED_FLAG|SPECIALIST:Pulmonologist|VITALS:95bpm,92%|PHOTO_REF:NONE",
		payload,
	)
}

func TestBuildPayload_WithPhoto(t *testing.T) {
	session := handoffSession(t)
	ref := "photos/wound-01.jpg"
	session.PhotoRef = &ref

	payload, err := BuildPayload(session, handoffResult())

	require.NoError(t, err)
	assert.Contains(t, payload, "PHOTO_REF:AVAILABLE")
}

func TestBuildPayload_MissingVitals(t *testing.T) {
	// 无读数时以 N/A 占位
	session := &models.PatientSession{
		SessionID: "session-empty",
		Patient: models.PatientInfo{
			Name: "John Doe",
			Age:  "N/A",
		},
	}

	payload, err := BuildPayload(session, &models.TriageResult{
		OverallStatus: models.StatusMonitor,
		Specialist:    "General Physician",
	})

	require.NoError(t, err)
	assert.Contains(t, payload, "VITALS:N/Abpm,N/A%")
	assert.Contains(t, payload, "STATUS:MONITOR")
}

func TestBuildPayload_NilArguments(t *testing.T) {
	_, err := BuildPayload(nil, handoffResult())
	assert.Error(t, err)

	_, err = BuildPayload(handoffSession(t), nil)
	assert.Error(t, err)
}

func TestEncodePNG_Success(t *testing.T) {
	payload, err := BuildPayload(handoffSession(t), handoffResult())
	require.NoError(t, err)

	png, err := EncodePNG(payload, 0)

	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG 魔数
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestEncodePNG_EmptyPayload(t *testing.T) {
	_, err := EncodePNG("", DefaultQRSize)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "payload is required")
}

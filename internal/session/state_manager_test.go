package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"triage-bridge/internal/config"
	"triage-bridge/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client, *config.Config) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cfg := &config.Config{}
	cfg.Triage.Cache.SessionKeyPrefix = "triage:session:"
	cfg.Triage.Cache.SessionSuffix = ":state"
	cfg.Triage.Cache.ResultSuffix = ":flags"
	cfg.Triage.Cache.ActiveSessionKey = "triage:active_session"
	cfg.Triage.Cache.SessionTTL = 3600
	cfg.Triage.Cache.ResultTTL = 30
	cfg.Triage.PollInterval = 5

	return mr, redisClient, cfg
}

func testSession(sessionID string) *models.PatientSession {
	return &models.PatientSession{
		SessionID: sessionID,
		Patient: models.PatientInfo{
			Name: "Test Patient",
			Age:  "45",
		},
		Safety: models.SafetyCheck{
			Airway:   models.AnswerNo,
			Bleeding: models.AnswerNo,
		},
		MainSymptom: models.SymptomChestPain,
		Step:        models.StepVitals,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestStateManager_SaveAndGetSession(t *testing.T) {
	_, redisClient, cfg := setupTestRedis(t)
	sm := NewStateManager(cfg, redisClient, zap.NewNop())
	ctx := context.Background()

	session := testSession("session-123")
	require.NoError(t, session.Vitals.Append(models.VitalReading{
		Signal:     models.SignalHeartRate,
		Value:      75,
		RecordedAt: time.Now(),
	}))

	require.NoError(t, sm.SaveSession(ctx, session))

	got, err := sm.GetSession(ctx, "session-123")
	require.NoError(t, err)
	assert.Equal(t, "session-123", got.SessionID)
	assert.Equal(t, "Test Patient", got.Patient.Name)
	assert.Equal(t, models.StepVitals, got.Step)
	assert.Equal(t, 1, got.Vitals.ReadingCount(models.SignalHeartRate))
}

func TestStateManager_SessionTTL(t *testing.T) {
	mr, redisClient, cfg := setupTestRedis(t)
	sm := NewStateManager(cfg, redisClient, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, sm.SaveSession(ctx, testSession("session-ttl")))

	// TTL 到期后会话不可读
	mr.FastForward(2 * time.Hour)

	_, err := sm.GetSession(ctx, "session-ttl")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestStateManager_GetSession_NotFound(t *testing.T) {
	_, redisClient, cfg := setupTestRedis(t)
	sm := NewStateManager(cfg, redisClient, zap.NewNop())

	_, err := sm.GetSession(context.Background(), "missing-session")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestStateManager_SaveSession_MissingID(t *testing.T) {
	_, redisClient, cfg := setupTestRedis(t)
	sm := NewStateManager(cfg, redisClient, zap.NewNop())

	err := sm.SaveSession(context.Background(), &models.PatientSession{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session_id is required")
}

func TestStateManager_DeleteSession(t *testing.T) {
	_, redisClient, cfg := setupTestRedis(t)
	sm := NewStateManager(cfg, redisClient, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, sm.SaveSession(ctx, testSession("session-del")))
	require.NoError(t, sm.DeleteSession(ctx, "session-del"))

	_, err := sm.GetSession(ctx, "session-del")
	assert.Error(t, err)
}

func TestStateManager_ActiveSessionPointer(t *testing.T) {
	_, redisClient, cfg := setupTestRedis(t)
	sm := NewStateManager(cfg, redisClient, zap.NewNop())
	ctx := context.Background()

	// 初始无活动会话
	active, err := sm.GetActiveSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", active)

	require.NoError(t, sm.SetActiveSession(ctx, "session-abc"))

	active, err = sm.GetActiveSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session-abc", active)

	require.NoError(t, sm.ClearActiveSession(ctx))

	active, err = sm.GetActiveSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", active)
}

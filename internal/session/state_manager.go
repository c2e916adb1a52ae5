package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"triage-bridge/internal/config"
	"triage-bridge/internal/models"
)

// StateManager 会话状态管理器（进行中的会话保存在 Redis）
type StateManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewStateManager 创建会话状态管理器
func NewStateManager(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *StateManager {
	return &StateManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// SessionKey 构建会话状态键
func (s *StateManager) SessionKey(sessionID string) string {
	return fmt.Sprintf("%s%s%s",
		s.config.Triage.Cache.SessionKeyPrefix,
		sessionID,
		s.config.Triage.Cache.SessionSuffix,
	)
}

// SaveSession 保存会话状态（带 TTL，每次保存刷新）
func (s *StateManager) SaveSession(ctx context.Context, session *models.PatientSession) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	if session.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Duration(s.config.Triage.Cache.SessionTTL) * time.Second
	if err := s.redisClient.Set(ctx, s.SessionKey(session.SessionID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession 获取会话状态
func (s *StateManager) GetSession(ctx context.Context, sessionID string) (*models.PatientSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	val, err := s.redisClient.Get(ctx, s.SessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.PatientSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// DeleteSession 删除会话状态
func (s *StateManager) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.redisClient.Del(ctx, s.SessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SetActiveSession 设置当前活动会话指针（单终端单会话模型）
func (s *StateManager) SetActiveSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}

	ttl := time.Duration(s.config.Triage.Cache.SessionTTL) * time.Second
	key := s.config.Triage.Cache.ActiveSessionKey
	if err := s.redisClient.Set(ctx, key, sessionID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set active session: %w", err)
	}
	return nil
}

// GetActiveSession 获取当前活动会话 ID（无活动会话时返回空串）
func (s *StateManager) GetActiveSession(ctx context.Context) (string, error) {
	val, err := s.redisClient.Get(ctx, s.config.Triage.Cache.ActiveSessionKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get active session: %w", err)
	}
	return val, nil
}

// ClearActiveSession 清除活动会话指针
func (s *StateManager) ClearActiveSession(ctx context.Context) error {
	if err := s.redisClient.Del(ctx, s.config.Triage.Cache.ActiveSessionKey).Err(); err != nil {
		return fmt.Errorf("failed to clear active session: %w", err)
	}
	return nil
}

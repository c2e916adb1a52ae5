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

// ResultCache 评估结果缓存（短 TTL，随监测轮询刷新）
type ResultCache struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewResultCache 创建评估结果缓存
func NewResultCache(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *ResultCache {
	return &ResultCache{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ResultKey 构建评估结果缓存键
func (c *ResultCache) ResultKey(sessionID string) string {
	return fmt.Sprintf("%s%s%s",
		c.config.Triage.Cache.SessionKeyPrefix,
		sessionID,
		c.config.Triage.Cache.ResultSuffix,
	)
}

// UpdateResult 更新评估结果缓存
func (c *ResultCache) UpdateResult(ctx context.Context, sessionID string, result *models.TriageResult) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if result == nil {
		return fmt.Errorf("result is required")
	}

	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	ttl := time.Duration(c.config.Triage.Cache.ResultTTL) * time.Second
	if err := c.redisClient.Set(ctx, c.ResultKey(sessionID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set result cache: %w", err)
	}

	c.logger.Debug("Updated result cache",
		zap.String("session_id", sessionID),
		zap.String("overall_status", result.OverallStatus),
		zap.Int("flag_count", len(result.Flags)),
	)

	return nil
}

// GetResult 读取评估结果缓存
func (c *ResultCache) GetResult(ctx context.Context, sessionID string) (*models.TriageResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	val, err := c.redisClient.Get(ctx, c.ResultKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("result not found for session: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get result cache: %w", err)
	}

	var result models.TriageResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

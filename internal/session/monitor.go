package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"triage-bridge/internal/config"
	"triage-bridge/internal/models"
)

// Evaluator 分诊评估器接口
type Evaluator interface {
	// Evaluate 评估会话的生命体征历史，返回完整分诊结果
	Evaluate(session *models.PatientSession) (*models.TriageResult, error)
}

// Archiver 会话归档接口
type Archiver interface {
	// ArchiveSession 归档已完成的会话及其最终评估结果
	ArchiveSession(ctx context.Context, session *models.PatientSession, result *models.TriageResult) error
}

// Monitor 会话监测器（轮询活动会话，定期重评估并刷新结果缓存）
type Monitor struct {
	config  *config.Config
	state   *StateManager
	results *ResultCache
	logger  *zap.Logger
}

// NewMonitor 创建会话监测器
func NewMonitor(
	cfg *config.Config,
	state *StateManager,
	results *ResultCache,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		config:  cfg,
		state:   state,
		results: results,
		logger:  logger,
	}
}

// Start 启动监测器（轮询模式）
func (m *Monitor) Start(ctx context.Context, evaluator Evaluator, archiver Archiver) error {
	m.logger.Info("Session monitor started",
		zap.Int("poll_interval", m.config.Triage.PollInterval),
	)

	ticker := time.NewTicker(time.Duration(m.config.Triage.PollInterval) * time.Second)
	defer ticker.Stop()

	// 立即执行一次
	if err := m.evaluateActive(ctx, evaluator, archiver); err != nil {
		m.logger.Error("Failed to evaluate active session on startup",
			zap.Error(err),
		)
	}

	// 定期轮询
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Session monitor stopped")
			return nil
		case <-ticker.C:
			if err := m.evaluateActive(ctx, evaluator, archiver); err != nil {
				m.logger.Error("Failed to evaluate active session",
					zap.Error(err),
				)
				// 继续轮询，不中断
			}
		}
	}
}

// evaluateActive 评估当前活动会话
// 会话尚无任何读数时跳过；已完成但仍挂在活动指针上的会话补做归档
func (m *Monitor) evaluateActive(ctx context.Context, evaluator Evaluator, archiver Archiver) error {
	sessionID, err := m.state.GetActiveSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active session: %w", err)
	}
	if sessionID == "" {
		return nil
	}

	session, err := m.state.GetSession(ctx, sessionID)
	if err != nil {
		// 状态已过期：清掉悬空的活动指针
		m.logger.Warn("Active session state missing, clearing pointer",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return m.state.ClearActiveSession(ctx)
	}

	hasReadings := false
	for _, signal := range models.MonitoredSignals {
		if session.Vitals.ReadingCount(signal) > 0 {
			hasReadings = true
			break
		}
	}
	if !hasReadings {
		m.logger.Debug("Active session has no readings yet",
			zap.String("session_id", sessionID),
		)
		return nil
	}

	result, err := evaluator.Evaluate(session)
	if err != nil {
		return fmt.Errorf("failed to evaluate session %s: %w", sessionID, err)
	}

	if err := m.results.UpdateResult(ctx, sessionID, result); err != nil {
		return fmt.Errorf("failed to update result cache: %w", err)
	}

	// 正常完成的会话由 Finish 归档并清除指针；
	// 这里只兜底处理流程中断后仍标记为活动的已完成会话
	if session.Completed() && archiver != nil {
		if err := archiver.ArchiveSession(ctx, session, result); err != nil {
			return fmt.Errorf("failed to archive completed session: %w", err)
		}
		if err := m.state.ClearActiveSession(ctx); err != nil {
			return err
		}
		m.logger.Info("Archived completed session from monitor",
			zap.String("session_id", sessionID),
		)
	}

	return nil
}

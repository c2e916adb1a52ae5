package evaluator

import (
	"fmt"

	"go.uber.org/zap"

	"triage-bridge/internal/models"
)

// Evaluator 趋势与阈值评估器（实现 session.Evaluator 接口）
type Evaluator struct {
	signals map[models.Signal]models.SignalConfig
	logger  *zap.Logger

	// 各信号评估器
	evaluators map[models.Signal]*SignalEvaluator
}

// NewEvaluator 创建评估器
func NewEvaluator(signals map[models.Signal]models.SignalConfig, logger *zap.Logger) (*Evaluator, error) {
	e := &Evaluator{
		signals:    signals,
		logger:     logger,
		evaluators: make(map[models.Signal]*SignalEvaluator),
	}

	// 每个监测信号必须有配置，缺失视为部署错误
	for _, signal := range models.MonitoredSignals {
		sc, ok := signals[signal]
		if !ok {
			return nil, fmt.Errorf("missing signal config: %s", signal)
		}
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid signal config for %s: %w", signal, err)
		}
		e.evaluators[signal] = NewSignalEvaluator(signal, sc)
	}

	return e, nil
}

// Evaluate 评估会话的生命体征历史，返回完整分诊结果
// 无读数的信号不参与评估（与表单流程一致：未录入即跳过）
func (e *Evaluator) Evaluate(session *models.PatientSession) (*models.TriageResult, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}

	builder := NewResultBuilder(session.SessionID)

	for _, signal := range models.MonitoredSignals {
		series := session.Vitals.Series(signal)
		if len(series) == 0 {
			continue
		}

		result, flag := e.evaluators[signal].Evaluate(series)
		builder.AddSignal(result, flag)

		if flag != nil {
			e.logger.Debug("Signal flagged",
				zap.String("session_id", session.SessionID),
				zap.String("signal", string(signal)),
				zap.String("severity", flag.Severity),
				zap.Float64("slope", result.Slope),
			)
		}
	}

	result := builder.Build(session)

	e.logger.Info("Session evaluated",
		zap.String("session_id", session.SessionID),
		zap.String("overall_status", result.OverallStatus),
		zap.String("decision", string(result.Decision)),
		zap.Int("worsening_count", result.WorseningCount),
		zap.Int("red_flag_count", result.RedFlagCount),
	)

	return result, nil
}

package evaluator

import (
	"time"

	"github.com/google/uuid"

	"triage-bridge/internal/models"
)

// ResultBuilder 评估结果构建器
type ResultBuilder struct {
	sessionID string
	signals   []models.SignalResult
	flags     []models.RiskFlag
	worsening int
	redFlag   int
	reasons   []string
}

// NewResultBuilder 创建结果构建器
func NewResultBuilder(sessionID string) *ResultBuilder {
	return &ResultBuilder{
		sessionID: sessionID,
	}
}

// AddSignal 记录一个信号的评估明细
// reasons 与 flags 分开累计：同一信号可以同时贡献恶化与红区两条说明，
// 但风险标记遵循"每信号最多一条，CRITICAL 优先"的约束
func (b *ResultBuilder) AddSignal(result models.SignalResult, flag *models.RiskFlag) {
	b.signals = append(b.signals, result)

	if result.Trend == models.TrendWorsening {
		b.worsening++
		b.reasons = append(b.reasons, WorseningReason(result.Signal))
	}
	if result.Critical {
		b.redFlag++
		b.reasons = append(b.reasons, CriticalReason(result.Signal))
	}

	if flag != nil {
		b.flags = append(b.flags, *flag)
	}
}

// Build 汇总为 TriageResult
func (b *ResultBuilder) Build(session *models.PatientSession) *models.TriageResult {
	overallStatus := models.StatusMonitor
	if b.redFlag >= 1 || b.worsening >= 1 {
		overallStatus = models.StatusRedFlag
	}

	// 决策级别：安全问询红旗或红区标记 → EMERGENCY；仅恶化趋势 → URGENT
	decision := models.DecisionStable
	switch {
	case session.Safety.HasRedFlag() || b.redFlag >= 1:
		decision = models.DecisionEmergency
	case b.worsening >= 1:
		decision = models.DecisionUrgent
	}

	specialist, _ := models.SpecialistFor(session.MainSymptom)

	return &models.TriageResult{
		ResultID:       uuid.New().String(),
		SessionID:      b.sessionID,
		Signals:        b.signals,
		Flags:          b.flags,
		WorseningCount: b.worsening,
		RedFlagCount:   b.redFlag,
		Reasons:        b.reasons,
		OverallStatus:  overallStatus,
		Decision:       decision,
		Specialist:     specialist,
		EvaluatedAt:    time.Now(),
	}
}

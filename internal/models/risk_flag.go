package models

import (
	"time"
)

// 风险标记级别
const (
	SeverityCritical = "CRITICAL" // 越过红区阈值
	SeverityWarning  = "WARNING"  // 恶化趋势
)

// 信号趋势判定结果
const (
	TrendStable           = "Stable"
	TrendWorsening        = "Worsening"
	TrendInsufficientData = "Insufficient Data" // 读数不足 2 条，跳过趋势分析
)

// 整体状态
const (
	StatusRedFlag = "RED_FLAG"
	StatusMonitor = "MONITOR"
)

// Decision 分诊决策级别
type Decision string

const (
	DecisionEmergency Decision = "EMERGENCY (Level 1-2)"
	DecisionUrgent    Decision = "URGENT (Level 3)"
	DecisionStable    Decision = "STABLE / MONITOR (Level 4-5)"
)

// RiskFlag 单信号风险标记（每次评估重新推导，不独立持久化）
// 不变式：同一信号一次评估最多一条标记，CRITICAL 优先于 WARNING
type RiskFlag struct {
	Signal   Signal `json:"signal"`
	Severity string `json:"severity"`
	Reason   string `json:"reason"`
}

// SignalResult 单信号评估明细（汇总表的一行）
type SignalResult struct {
	Signal   Signal   `json:"signal"`
	Trend    string   `json:"trend"`
	Critical bool     `json:"critical"`
	Slope    float64  `json:"slope"`
	Latest   *float64 `json:"latest,omitempty"`
}

// TriageResult 一次评估的完整输出（归档为 JSONB 快照）
type TriageResult struct {
	ResultID       string         `json:"result_id"`
	SessionID      string         `json:"session_id"`
	Signals        []SignalResult `json:"signals"`
	Flags          []RiskFlag     `json:"flags"`
	WorseningCount int            `json:"worsening_count"`
	RedFlagCount   int            `json:"red_flag_count"`
	Reasons        []string       `json:"reasons"`
	OverallStatus  string         `json:"overall_status"` // RED_FLAG, MONITOR
	Decision       Decision       `json:"decision"`
	Specialist     string         `json:"specialist"`
	EvaluatedAt    time.Time      `json:"evaluated_at"`
}

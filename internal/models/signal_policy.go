package models

import (
	"fmt"
)

// TrendDirection 信号的恶化方向策略
// 每个信号必须显式配置恶化方向，不从符号运算推断
type TrendDirection string

const (
	// WorseWhenRising 数值上升为恶化（心率、疼痛评分）
	WorseWhenRising TrendDirection = "worse_when_rising"
	// WorseWhenFalling 数值下降为恶化（血氧）
	WorseWhenFalling TrendDirection = "worse_when_falling"
)

// IsValid 检查方向策略取值
func (d TrendDirection) IsValid() bool {
	return d == WorseWhenRising || d == WorseWhenFalling
}

// SignalConfig 单信号评估配置
// 红区阈值和斜率预警阈值均为配置项，不在代码中写死语义
type SignalConfig struct {
	CriticalLow  *float64       `json:"critical_low,omitempty"`
	CriticalHigh *float64       `json:"critical_high,omitempty"`
	SlopeWarn    float64        `json:"slope_warn"` // 每个读数间隔的预警斜率（幅值）
	Direction    TrendDirection `json:"direction"`
}

// Validate 校验信号配置
func (c *SignalConfig) Validate() error {
	if !c.Direction.IsValid() {
		return fmt.Errorf("invalid trend direction: %s", c.Direction)
	}
	if c.SlopeWarn < 0 {
		return fmt.Errorf("slope_warn must be non-negative, got %f", c.SlopeWarn)
	}
	if c.CriticalLow != nil && c.CriticalHigh != nil && *c.CriticalLow > *c.CriticalHigh {
		return fmt.Errorf("critical_low %f exceeds critical_high %f", *c.CriticalLow, *c.CriticalHigh)
	}
	return nil
}

// DefaultSignalConfigs 默认阈值配置（取自 MIMIC-IV 派生的红区边界）
func DefaultSignalConfigs() map[Signal]SignalConfig {
	return map[Signal]SignalConfig{
		SignalHeartRate: {
			CriticalLow:  floatPtr(40),
			CriticalHigh: floatPtr(130),
			SlopeWarn:    5,
			Direction:    WorseWhenRising,
		},
		SignalSpO2: {
			CriticalLow:  floatPtr(90),
			CriticalHigh: nil, // 血氧无高侧红区
			SlopeWarn:    2,
			Direction:    WorseWhenFalling,
		},
		SignalPainScore: {
			CriticalLow:  nil,
			CriticalHigh: floatPtr(8),
			SlopeWarn:    2,
			Direction:    WorseWhenRising,
		},
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

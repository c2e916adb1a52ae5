package models

import (
	"time"
)

// Step 引导式评估流程的步骤
type Step string

const (
	StepRegistration Step = "registration"
	StepSafety       Step = "safety"
	StepVitals       Step = "vitals"
	StepContext      Step = "context"
	StepPhoto        Step = "photo"
	StepSummary      Step = "summary"
)

// 安全问询的答案取值（与问卷保持一致）
const (
	AnswerNo      = "No"
	AnswerYes     = "Yes"
	AnswerNotSure = "Not Sure"
)

// PatientInfo 患者基本信息
type PatientInfo struct {
	Name string `json:"name"`
	Age  string `json:"age"`
}

// SafetyCheck 即时安全问询（气道/出血）
type SafetyCheck struct {
	Airway   string `json:"airway"`   // No, Yes, Not Sure
	Bleeding string `json:"bleeding"` // No, Yes, Not Sure
}

// HasRedFlag 任一安全问题回答 Yes 即为硬性红旗（强制 EMERGENCY）
func (s *SafetyCheck) HasRedFlag() bool {
	return s.Airway == AnswerYes || s.Bleeding == AnswerYes
}

// PatientSession 患者会话（对应 triage_sessions 表）
// 注册时创建，只通过追加读数和步骤推进发生变更，流程内不删除
type PatientSession struct {
	SessionID      string        `json:"session_id" db:"session_id"`
	Patient        PatientInfo   `json:"patient"`
	Safety         SafetyCheck   `json:"safety"`
	Vitals         VitalsHistory `json:"vitals"`
	MainSymptom    string        `json:"main_symptom" db:"main_symptom"`
	RapidWorsening string        `json:"rapid_worsening" db:"rapid_worsening"` // No, Yes, Not Sure
	PhotoRef       *string       `json:"photo_ref,omitempty" db:"photo_ref"`
	Step           Step          `json:"step" db:"step"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// HasPhoto 会话是否带有影像引用
func (s *PatientSession) HasPhoto() bool {
	return s.PhotoRef != nil && *s.PhotoRef != ""
}

// Completed 会话是否已走到汇总步骤
func (s *PatientSession) Completed() bool {
	return s.Step == StepSummary
}

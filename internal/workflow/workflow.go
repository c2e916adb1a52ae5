package workflow

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"triage-bridge/internal/models"
)

// Workflow 引导式评估流程
// 步骤顺序固定：registration → safety → vitals → context → photo → summary
// 影像步骤只对需要创面评估的主诉开放，其余主诉由 context 直接进入 summary
type Workflow struct {
	logger *zap.Logger
}

// NewWorkflow 创建流程控制器
func NewWorkflow(logger *zap.Logger) *Workflow {
	return &Workflow{
		logger: logger,
	}
}

// ValidationError 步骤校验错误（当前步骤必填数据缺失，拒绝推进）
type ValidationError struct {
	Step   models.Step
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cannot advance from step %s: %s", e.Step, e.Reason)
}

// Advance 推进到下一步骤
// 当前步骤数据不完整时拒绝推进并返回 ValidationError
func (w *Workflow) Advance(session *models.PatientSession) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}

	if err := w.validateStep(session); err != nil {
		w.logger.Debug("Step advance rejected",
			zap.String("session_id", session.SessionID),
			zap.String("step", string(session.Step)),
			zap.Error(err),
		)
		return err
	}

	next, err := w.nextStep(session)
	if err != nil {
		return err
	}

	w.logger.Info("Step advanced",
		zap.String("session_id", session.SessionID),
		zap.String("from", string(session.Step)),
		zap.String("to", string(next)),
	)

	session.Step = next
	session.UpdatedAt = time.Now()
	return nil
}

// validateStep 校验当前步骤的必填数据
func (w *Workflow) validateStep(session *models.PatientSession) error {
	switch session.Step {
	case models.StepRegistration:
		if session.Patient.Name == "" {
			return &ValidationError{Step: session.Step, Reason: "patient name is required"}
		}

	case models.StepSafety:
		if !isAnswer(session.Safety.Airway) {
			return &ValidationError{Step: session.Step, Reason: "airway answer is required"}
		}
		if !isAnswer(session.Safety.Bleeding) {
			return &ValidationError{Step: session.Step, Reason: "bleeding answer is required"}
		}

	case models.StepVitals:
		// 每个监测信号至少一条读数
		for _, signal := range models.MonitoredSignals {
			if session.Vitals.ReadingCount(signal) == 0 {
				return &ValidationError{
					Step:   session.Step,
					Reason: fmt.Sprintf("no readings recorded for %s", signal),
				}
			}
		}

	case models.StepContext:
		if _, ok := models.SpecialistFor(session.MainSymptom); !ok {
			return &ValidationError{
				Step:   session.Step,
				Reason: fmt.Sprintf("unrecognized main symptom: %q", session.MainSymptom),
			}
		}
		if !isAnswer(session.RapidWorsening) {
			return &ValidationError{Step: session.Step, Reason: "rapid worsening answer is required"}
		}

	case models.StepPhoto:
		// 影像本身可选，进入该步骤后可以直接完成

	case models.StepSummary:
		return &ValidationError{Step: session.Step, Reason: "assessment already complete"}

	default:
		return fmt.Errorf("unknown step: %s", session.Step)
	}

	return nil
}

// nextStep 计算下一步骤
func (w *Workflow) nextStep(session *models.PatientSession) (models.Step, error) {
	switch session.Step {
	case models.StepRegistration:
		return models.StepSafety, nil
	case models.StepSafety:
		return models.StepVitals, nil
	case models.StepVitals:
		return models.StepContext, nil
	case models.StepContext:
		if models.PhotoEligible(session.MainSymptom) {
			return models.StepPhoto, nil
		}
		return models.StepSummary, nil
	case models.StepPhoto:
		return models.StepSummary, nil
	default:
		return "", fmt.Errorf("no next step from: %s", session.Step)
	}
}

// isAnswer 校验问询答案取值
func isAnswer(answer string) bool {
	switch answer {
	case models.AnswerNo, models.AnswerYes, models.AnswerNotSure:
		return true
	}
	return false
}

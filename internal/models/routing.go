package models

// 主诉分类标签
const (
	SymptomWoundSkin      = "Wound/Skin"
	SymptomChestPain      = "Chest Pain"
	SymptomBreathingIssue = "Breathing Issue"
	SymptomFeverInfection = "Fever/Infection"
	SymptomNerveNumbness  = "Nerve/Numbness"
)

// specialistMap 主诉到专科医生的转诊映射
var specialistMap = map[string]string{
	SymptomWoundSkin:      "Dermatologist or General Surgeon",
	SymptomChestPain:      "Cardiologist",
	SymptomBreathingIssue: "Pulmonologist",
	SymptomFeverInfection: "General Physician",
	SymptomNerveNumbness:  "Neurologist",
}

// photoEligibleSymptoms 允许进入影像采集步骤的主诉集合
var photoEligibleSymptoms = map[string]bool{
	SymptomWoundSkin:      true,
	SymptomFeverInfection: true,
}

// SpecialistFor 返回主诉对应的转诊专科（未知主诉返回 false）
func SpecialistFor(symptom string) (string, bool) {
	specialist, ok := specialistMap[symptom]
	return specialist, ok
}

// PhotoEligible 主诉是否需要影像采集步骤
func PhotoEligible(symptom string) bool {
	return photoEligibleSymptoms[symptom]
}

// KnownSymptoms 返回所有已知主诉标签
func KnownSymptoms() []string {
	return []string{
		SymptomWoundSkin,
		SymptomChestPain,
		SymptomBreathingIssue,
		SymptomFeverInfection,
		SymptomNerveNumbness,
	}
}

// PatientInstructions 汇总页输出的通用照护指引
func PatientInstructions() []string {
	return []string{
		"Sit or lie down and avoid all physical activity.",
		"Sit upright or lean slightly forward to make breathing easier.",
		"Monitor body temperature every 4-6 hours.",
		"Do not stay alone in case symptoms worsen suddenly.",
	}
}

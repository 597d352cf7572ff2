package models

// RecommendedLesson is a lesson suggested for a student based on skill
// mastery, computed entirely by the upstream service.
type RecommendedLesson struct {
	LessonID  int64    `json:"lesson_id"`
	Title     string   `json:"title"`
	URL       string   `json:"url,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	SkillTags []string `json:"skill_tags,omitempty"`
}

// MisconceptionExample is a sample low-scoring answer within a cluster.
type MisconceptionExample struct {
	StudentAnswer  string   `json:"student_answer"`
	QuestionPrompt string   `json:"question_prompt"`
	Score          *float64 `json:"score"`
}

// MisconceptionCluster groups similar low-scoring answers for a class.
// Clustering happens upstream; this service only relays the result.
type MisconceptionCluster struct {
	Label              string                 `json:"label"`
	Count              int                    `json:"count"`
	Examples           []MisconceptionExample `json:"examples"`
	SuggestedSkillTags []string               `json:"suggested_skill_tags,omitempty"`
}

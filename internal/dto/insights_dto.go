package dto

import "github.com/classpulse/grading-gateway/internal/models"

// RecommendationsView wraps recommended lessons for a class.
type RecommendationsView struct {
	ClassID int64                      `json:"class_id"`
	Lessons []models.RecommendedLesson `json:"lessons"`
}

// MisconceptionsView wraps misconception clusters for a class and period.
type MisconceptionsView struct {
	ClassID  int64                         `json:"class_id"`
	Period   string                        `json:"period"`
	Clusters []models.MisconceptionCluster `json:"clusters"`
}

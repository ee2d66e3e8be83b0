package storage

import "time"

type Progress struct {
	Key                string
	TotalXP            int
	CurrentLevel       int
	TasksCompleted     int
	CurrentStreak      int
	LongestStreak      int
	LastCompletionDate *time.Time
}

type TaskTemplate struct {
	ID           int64
	Title        string
	Category     string
	Recurrence   string // daily, weekly, bonus
	EffortType   string // physical, mental, creative
	LocationType string // indoor, outdoor, any
	BaseXPLow    int
	BaseXPMedium int
	BaseXPHigh   int
	Active       bool
	CreatedAt    time.Time

	// Ordered by display order; loaded with the template.
	Subtasks []SubTask
}

type SubTask struct {
	ID           int64
	TemplateID   int64
	Description  string
	Tier         int // ordinal 1/2/3
	DisplayOrder int
}

type TaskInstance struct {
	ID           int64
	TemplateID   int64
	SelectedTier int
	CreatedAt    time.Time
	CompletedAt  *time.Time
	XPEarned     int

	// One row per subtask available at the current tier.
	Completions []SubTaskCompletion
}

type SubTaskCompletion struct {
	ID         int64
	InstanceID int64
	SubtaskID  int64
	Completed  bool
}

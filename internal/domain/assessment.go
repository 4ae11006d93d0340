package domain

import "time"

// AssessmentStatus represents the lifecycle status of an assessment
type AssessmentStatus string

const (
	AssessmentPending   AssessmentStatus = "pending"
	AssessmentCompleted AssessmentStatus = "completed"
	AssessmentGraded    AssessmentStatus = "graded"
	AssessmentOverdue   AssessmentStatus = "overdue"
)

// Assessment a task assigned by an instructor to a student
type Assessment struct {
	ID             int64
	StudentID      int64
	InstructorID   int64
	CourseID       *int64
	Title          string
	DueDate        time.Time
	CompletionDate *time.Time
	Score          *float64
	MaxScore       float64
	Status         AssessmentStatus
	Feedback       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsValid returns true for known statuses
func (s AssessmentStatus) IsValid() bool {
	switch s {
	case AssessmentPending, AssessmentCompleted, AssessmentGraded, AssessmentOverdue:
		return true
	}
	return false
}

// CanBeCompleted returns true if the student may mark the assessment as done
func (a *Assessment) CanBeCompleted() bool {
	return a.Status == AssessmentPending || a.Status == AssessmentOverdue
}

// CanBeGraded returns true if the instructor may grade the assessment
func (a *Assessment) CanBeGraded() bool {
	return a.Status == AssessmentPending || a.Status == AssessmentCompleted || a.Status == AssessmentOverdue
}

// IsOverdue returns true if the assessment is still pending after its due date
func (a *Assessment) IsOverdue(now time.Time) bool {
	if a.Status != AssessmentPending {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dy, dm, dd := a.DueDate.Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location())
	return due.Before(today)
}

// Percentage returns score as a percentage of MaxScore, nil when not graded
func (a *Assessment) Percentage() *float64 {
	if a.Score == nil || a.MaxScore <= 0 {
		return nil
	}
	p := *a.Score / a.MaxScore * 100
	return &p
}

// AssessmentsFilter filter for listing assessments
type AssessmentsFilter struct {
	StudentID    *int64
	InstructorID *int64
	CourseID     *int64
	Status       *AssessmentStatus
}

// AssessmentUpdate partial update, status and score change through dedicated operations only
type AssessmentUpdate struct {
	Title    *string
	DueDate  *time.Time
	CourseID *int64
	MaxScore *float64
	Feedback *string
}

// IsEmpty returns true if no field is set
func (u *AssessmentUpdate) IsEmpty() bool {
	return u.Title == nil && u.DueDate == nil && u.CourseID == nil && u.MaxScore == nil && u.Feedback == nil
}

package models

import "time"

// Enrollment links one student to one course. The (student, course) pair is unique.
type Enrollment struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	Student     *User      `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	CourseID    uint       `gorm:"not null;uniqueIndex:idx_enrollment_student_course;index" json:"course_id"`
	Course      *Course    `json:"course,omitempty"`
	EnrolledAt  time.Time  `gorm:"autoCreateTime;<-:create;index" json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Progress    int        `gorm:"not null;default:0;check:progress >= 0 AND progress <= 100" json:"progress"`
}

func (e Enrollment) Completed() bool {
	return e.CompletedAt != nil
}

package models

import "time"

// Review is unique per (course, student); a second submission overwrites the first.
type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_review_course_student" json:"course_id"`
	Course    *Course   `json:"course,omitempty"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_review_course_student;index" json:"student_id"`
	Student   *User     `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

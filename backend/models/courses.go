package models

import "time"

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type LessonType string

const (
	LessonVideo      LessonType = "video"
	LessonText       LessonType = "text"
	LessonAssignment LessonType = "assignment"
)

func (t LessonType) Valid() bool {
	switch t {
	case LessonVideo, LessonText, LessonAssignment:
		return true
	}
	return false
}

type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Courses []Course `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	// Filled by the services, never stored.
	CourseCount int64 `gorm:"-:all" json:"course_count"`
}

type Course struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Slug             string     `gorm:"size:220;not null;uniqueIndex" json:"slug"`
	Description      string     `gorm:"type:text;not null" json:"description"`
	ShortDescription string     `gorm:"size:300" json:"short_description"`
	Image            string     `gorm:"size:255" json:"image"`
	CategoryID       uint       `gorm:"not null;index" json:"category_id"`
	Category         *Category  `json:"category,omitempty"`
	InstructorID     *uint      `gorm:"index" json:"instructor_id"`
	Instructor       *User      `gorm:"constraint:OnDelete:SET NULL" json:"instructor,omitempty"`
	Price            float64    `gorm:"type:decimal(10,2);not null;default:0;check:price >= 0" json:"price"`
	Difficulty       Difficulty `gorm:"size:20;not null;default:beginner" json:"difficulty"`
	DurationHours    int        `gorm:"not null;default:0;check:duration_hours >= 0" json:"duration_hours"`
	IsPublished      bool       `gorm:"not null;default:false;index" json:"is_published"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Lessons     []Lesson     `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Enrollments []Enrollment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Reviews     []Review     `gorm:"constraint:OnDelete:CASCADE" json:"reviews,omitempty"`

	// Aggregates filled by the services, never stored.
	Rating           float64 `gorm:"-:all" json:"rating"`
	TotalEnrollments int64   `gorm:"-:all" json:"total_enrollments"`
}

type Lesson struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	CourseID        uint       `gorm:"not null;uniqueIndex:idx_lesson_course_slug" json:"course_id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Slug            string     `gorm:"size:220;not null;uniqueIndex:idx_lesson_course_slug" json:"slug"`
	Content         string     `gorm:"type:text" json:"content"`
	VideoURL        string     `gorm:"size:500" json:"video_url"`
	LessonType      LessonType `gorm:"size:20;not null" json:"lesson_type"`
	Order           int        `gorm:"column:sort_order;not null;default:0;check:sort_order >= 0" json:"order"`
	DurationMinutes int        `gorm:"not null;default:0;check:duration_minutes >= 0" json:"duration_minutes"`
	IsFree          bool       `gorm:"not null;default:false" json:"is_free"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

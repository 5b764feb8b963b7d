package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"studyproject/backend/models"
	"studyproject/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentService covers what a student does with a course: joining it, reviewing
// it and recording progress.
type EnrollmentService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewEnrollmentService(db *gorm.DB, baseLog *utils.Logger) *EnrollmentService {
	return &EnrollmentService{db: db, log: baseLog.With("service", "EnrollmentService")}
}

type ReviewForm struct {
	Rating  string `form:"rating" json:"rating" validate:"required"`
	Comment string `form:"comment" json:"comment" validate:"max=5000"`
}

type ProgressForm struct {
	Progress  string `form:"progress" json:"progress" validate:"required"`
	Completed string `form:"completed" json:"completed"`
}

type EnrollResult struct {
	Course     models.Course     `json:"course"`
	Enrollment models.Enrollment `json:"enrollment"`
	// Created is false when the student was already enrolled.
	Created bool `json:"created"`
}

type ReviewResult struct {
	Course  models.Course `json:"course"`
	Review  models.Review `json:"review"`
	Created bool          `json:"created"`
}

// Enroll joins a student to a published course. Enrolling twice is not an error:
// the existing enrollment is returned with Created unset.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID uint) (EnrollResult, error) {
	db := s.db.WithContext(ctx)
	course, err := publishedCourse(db, courseID)
	if err != nil {
		return EnrollResult{}, err
	}

	enrollment := models.Enrollment{StudentID: studentID, CourseID: courseID}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return EnrollResult{}, NotFound("Student not found")
		}
		s.log.Error("enroll failed", "student_id", studentID, "course_id", courseID, "error", res.Error)
		return EnrollResult{}, Conflict("Could not enroll in the course. Please try again.", nil, res.Error)
	}
	if res.RowsAffected > 0 {
		s.log.Info("student enrolled", "student_id", studentID, "course_id", courseID)
		return EnrollResult{Course: *course, Enrollment: enrollment, Created: true}, nil
	}

	var existing models.Enrollment
	if err := db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&existing).Error; err != nil {
		return EnrollResult{}, fmt.Errorf("load existing enrollment: %w", err)
	}
	return EnrollResult{Course: *course, Enrollment: existing}, nil
}

// AddOrUpdateReview stores the student's review of a published course, replacing
// any earlier one.
func (s *EnrollmentService) AddOrUpdateReview(ctx context.Context, studentID, courseID uint, form ReviewForm) (ReviewResult, error) {
	db := s.db.WithContext(ctx)
	course, err := publishedCourse(db, courseID)
	if err != nil {
		return ReviewResult{}, err
	}

	trimAll(&form.Rating, &form.Comment)
	fields := validateForm(form)
	rating, ok := parseRating(form.Rating)
	if fields == nil && !ok {
		fields = map[string]string{"rating": "rating must be a whole number from 1 to 5"}
	}
	if len(fields) > 0 {
		return ReviewResult{}, Validation("Please correct the errors below.", fields, form)
	}

	result := ReviewResult{Course: *course}
	err = db.Transaction(func(tx *gorm.DB) error {
		var prior int64
		if err := tx.Model(&models.Review{}).
			Where("course_id = ? AND student_id = ?", courseID, studentID).
			Count(&prior).Error; err != nil {
			return err
		}

		review := models.Review{CourseID: courseID, StudentID: studentID, Rating: rating, Comment: form.Comment}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).Create(&review).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ? AND student_id = ?", courseID, studentID).First(&result.Review).Error; err != nil {
			return err
		}
		result.Created = prior == 0
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return ReviewResult{}, NotFound("Student not found")
		}
		s.log.Error("save review failed", "student_id", studentID, "course_id", courseID, "error", err)
		return ReviewResult{}, Conflict("Could not save your review. Please try again.", form, err)
	}
	return result, nil
}

// GetReview returns the student's review of a published course, nil when the
// student has not reviewed it yet.
func (s *EnrollmentService) GetReview(ctx context.Context, studentID, courseID uint) (*models.Review, error) {
	db := s.db.WithContext(ctx)
	if _, err := publishedCourse(db, courseID); err != nil {
		return nil, err
	}

	var review models.Review
	err := db.Where("course_id = ? AND student_id = ?", courseID, studentID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load review: %w", err)
	}
	return &review, nil
}

// UpdateProgress records the student's own progress percentage and completion mark.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, studentID, courseID uint, form ProgressForm) (*models.Enrollment, error) {
	trimAll(&form.Progress, &form.Completed)
	fields := validateForm(form)
	progress, err := strconv.Atoi(form.Progress)
	if fields == nil && (err != nil || progress < 0 || progress > 100) {
		fields = map[string]string{"progress": "progress must be a whole number from 0 to 100"}
	}
	if len(fields) > 0 {
		return nil, Validation("Please correct the errors below.", fields, form)
	}

	db := s.db.WithContext(ctx)
	var enrollment models.Enrollment
	if err := db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("You are not enrolled in this course")
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}

	updates := map[string]interface{}{"progress": progress}
	switch {
	case checked(form.Completed) && enrollment.CompletedAt == nil:
		updates["completed_at"] = time.Now()
	case !checked(form.Completed):
		updates["completed_at"] = nil
	}
	if err := db.Model(&enrollment).Updates(updates).Error; err != nil {
		s.log.Error("update progress failed", "enrollment_id", enrollment.ID, "error", err)
		return nil, Conflict("Could not update your progress. Please try again.", form, err)
	}

	if err := db.First(&enrollment, enrollment.ID).Error; err != nil {
		return nil, fmt.Errorf("reload enrollment: %w", err)
	}
	return &enrollment, nil
}

// StudentEnrollments lists the student's enrollments, most recent first.
func (s *EnrollmentService) StudentEnrollments(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Category").
		Where("student_id = ?", studentID).
		Order("enrolled_at DESC, id DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

func publishedCourse(db *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := db.Where("id = ? AND is_published = ?", id, true).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Course not found")
		}
		return nil, fmt.Errorf("load course %d: %w", id, err)
	}
	return &course, nil
}

func parseRating(raw string) (int, bool) {
	rating, err := strconv.Atoi(raw)
	if err != nil || rating < 1 || rating > 5 {
		return 0, false
	}
	return rating, true
}

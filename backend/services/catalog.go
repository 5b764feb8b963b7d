package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"studyproject/backend/models"
	"studyproject/backend/utils"

	"gorm.io/gorm"
)

// Display values used when a site statistic has nothing to count yet.
const (
	FallbackStudents       = "1000+"
	FallbackCourses        = "50+"
	FallbackInstructors    = "25+"
	FallbackCompletionRate = 95
)

// CatalogService answers the read side of the public site.
type CatalogService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewCatalogService(db *gorm.DB, baseLog *utils.Logger) *CatalogService {
	return &CatalogService{db: db, log: baseLog.With("service", "CatalogService")}
}

// CourseFilter narrows the published course list.
type CourseFilter struct {
	Category   string `query:"category"`
	Difficulty string `query:"difficulty"`
}

// Stat is one headline number. Fallback is set when the real value is zero and
// Display shows the placeholder instead.
type Stat struct {
	Value    int64  `json:"value"`
	Fallback bool   `json:"fallback"`
	Display  string `json:"display"`
}

type SiteStatistics struct {
	Students       Stat `json:"total_students"`
	Courses        Stat `json:"total_courses"`
	Instructors    Stat `json:"total_instructors"`
	CompletionRate Stat `json:"completion_rate"`
}

type CourseDetail struct {
	Course     models.Course      `json:"course"`
	IsEnrolled bool               `json:"is_enrolled"`
	Enrollment *models.Enrollment `json:"enrollment,omitempty"`
}

// ListPublished returns published courses, newest first.
func (s *CatalogService) ListPublished(ctx context.Context, filter CourseFilter) ([]models.Course, error) {
	q := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Instructor").
		Where("courses.is_published = ?", true)

	if filter.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = courses.category_id").
			Where("categories.slug = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		q = q.Where("courses.difficulty = ?", filter.Difficulty)
	}

	var courses []models.Course
	if err := q.Order("courses.created_at DESC, courses.id DESC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("list published courses: %w", err)
	}
	if err := attachStats(s.db.WithContext(ctx), courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Popular returns up to limit published courses with the most enrollments.
func (s *CatalogService) Popular(ctx context.Context, limit int) ([]models.Course, error) {
	if limit <= 0 {
		return []models.Course{}, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).
		Table("courses").
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id").
		Where("courses.is_published = ?", true).
		Group("courses.id, courses.created_at").
		Order("COUNT(enrollments.id) DESC, courses.created_at DESC, courses.id DESC").
		Limit(limit).
		Pluck("courses.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("rank popular courses: %w", err)
	}
	return s.coursesInOrder(ctx, ids)
}

// ByCategory returns the category and its published courses.
func (s *CatalogService) ByCategory(ctx context.Context, slug string) (*models.Category, []models.Course, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NotFound("Category not found")
		}
		return nil, nil, fmt.Errorf("load category %q: %w", slug, err)
	}

	courses, err := s.ListPublished(ctx, CourseFilter{Category: category.Slug})
	if err != nil {
		return nil, nil, err
	}
	category.CourseCount = int64(len(courses))
	return &category, courses, nil
}

// CourseDetail loads a published course by slug with its lessons and reviews. When
// studentID is non-zero the student's enrollment, if any, is attached.
func (s *CatalogService) CourseDetail(ctx context.Context, slug string, studentID uint) (*CourseDetail, error) {
	db := s.db.WithContext(ctx)

	var course models.Course
	err := db.
		Preload("Category").
		Preload("Instructor").
		Preload("Lessons", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC, id ASC") }).
		Preload("Reviews", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC, id DESC") }).
		Preload("Reviews.Student").
		Where("slug = ? AND is_published = ?", slug, true).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Course not found")
		}
		return nil, fmt.Errorf("load course %q: %w", slug, err)
	}

	courses := []models.Course{course}
	if err := attachStats(db, courses); err != nil {
		return nil, err
	}
	detail := &CourseDetail{Course: courses[0]}

	if studentID != 0 {
		var enrollment models.Enrollment
		err := db.Where("student_id = ? AND course_id = ?", studentID, course.ID).First(&enrollment).Error
		switch {
		case err == nil:
			detail.IsEnrolled = true
			detail.Enrollment = &enrollment
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("load enrollment: %w", err)
		}
	}
	return detail, nil
}

// SiteStatistics computes the home page headline numbers.
func (s *CatalogService) SiteStatistics(ctx context.Context) (SiteStatistics, error) {
	db := s.db.WithContext(ctx)
	var students, courses, instructors, completed, enrollments int64

	if err := db.Model(&models.Enrollment{}).Distinct("student_id").Count(&students).Error; err != nil {
		return SiteStatistics{}, fmt.Errorf("count students: %w", err)
	}
	if err := db.Model(&models.Course{}).Where("is_published = ?", true).Count(&courses).Error; err != nil {
		return SiteStatistics{}, fmt.Errorf("count courses: %w", err)
	}
	if err := db.Model(&models.Course{}).Where("instructor_id IS NOT NULL").Distinct("instructor_id").Count(&instructors).Error; err != nil {
		return SiteStatistics{}, fmt.Errorf("count instructors: %w", err)
	}
	if err := db.Model(&models.Enrollment{}).Count(&enrollments).Error; err != nil {
		return SiteStatistics{}, fmt.Errorf("count enrollments: %w", err)
	}
	if err := db.Model(&models.Enrollment{}).Where("completed_at IS NOT NULL").Count(&completed).Error; err != nil {
		return SiteStatistics{}, fmt.Errorf("count completed enrollments: %w", err)
	}

	return SiteStatistics{
		Students:       countStat(students, FallbackStudents),
		Courses:        countStat(courses, FallbackCourses),
		Instructors:    countStat(instructors, FallbackInstructors),
		CompletionRate: completionStat(completed, enrollments),
	}, nil
}

// FallbackStatistics is shown when the real numbers cannot be computed.
func FallbackStatistics() SiteStatistics {
	return SiteStatistics{
		Students:       countStat(0, FallbackStudents),
		Courses:        countStat(0, FallbackCourses),
		Instructors:    countStat(0, FallbackInstructors),
		CompletionRate: completionStat(0, 0),
	}
}

// Categories lists every category by name with its course count.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return categoriesWithCounts(s.db.WithContext(ctx))
}

func (s *CatalogService) coursesInOrder(ctx context.Context, ids []uint) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	db := s.db.WithContext(ctx)

	var rows []models.Course
	if err := db.Preload("Category").Preload("Instructor").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	byID := make(map[uint]models.Course, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	courses := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			courses = append(courses, c)
		}
	}
	if err := attachStats(db, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func countStat(value int64, fallback string) Stat {
	if value > 0 {
		return Stat{Value: value, Display: fmt.Sprintf("%d+", value)}
	}
	return Stat{Value: 0, Fallback: true, Display: fallback}
}

func completionStat(completed, total int64) Stat {
	if total == 0 {
		return Stat{
			Value:    FallbackCompletionRate,
			Fallback: true,
			Display:  fmt.Sprintf("%d%%", FallbackCompletionRate),
		}
	}
	rate := int64(math.Round(float64(completed) / float64(total) * 100))
	return Stat{Value: rate, Display: fmt.Sprintf("%d%%", rate)}
}

// roundRating rounds an average to one decimal place.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// attachStats fills Rating and TotalEnrollments on every course with two grouped queries.
func attachStats(db *gorm.DB, courses []models.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]uint, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}

	var ratings []struct {
		CourseID uint
		Average  float64
	}
	if err := db.Model(&models.Review{}).
		Select("course_id, AVG(rating) AS average").
		Where("course_id IN ?", ids).
		Group("course_id").
		Scan(&ratings).Error; err != nil {
		return fmt.Errorf("aggregate ratings: %w", err)
	}

	var counts []struct {
		CourseID uint
		Total    int64
	}
	if err := db.Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", ids).
		Group("course_id").
		Scan(&counts).Error; err != nil {
		return fmt.Errorf("aggregate enrollments: %w", err)
	}

	avgByID := make(map[uint]float64, len(ratings))
	for _, r := range ratings {
		avgByID[r.CourseID] = r.Average
	}
	totalByID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		totalByID[c.CourseID] = c.Total
	}
	for i := range courses {
		courses[i].Rating = roundRating(avgByID[courses[i].ID])
		courses[i].TotalEnrollments = totalByID[courses[i].ID]
	}
	return nil
}

// categoriesWithCounts lists categories by name with the number of courses in each.
func categoriesWithCounts(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var counts []struct {
		CategoryID uint
		Total      int64
	}
	if err := db.Model(&models.Course{}).
		Select("category_id, COUNT(*) AS total").
		Group("category_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count courses per category: %w", err)
	}
	totalByID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		totalByID[c.CategoryID] = c.Total
	}
	for i := range categories {
		categories[i].CourseCount = totalByID[categories[i].ID]
	}
	return categories, nil
}

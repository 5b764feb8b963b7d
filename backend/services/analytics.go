package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"studyproject/backend/models"

	"gorm.io/gorm"
)

// CourseAnalytics is the admin summary of one course. Ratings counts reviews per
// star, 1 to 5.
type CourseAnalytics struct {
	CourseID         uint              `json:"course_id"`
	Title            string            `json:"course_title"`
	IsPublished      bool              `json:"is_published"`
	TotalEnrollments int64             `json:"total_enrollments"`
	Completed        int64             `json:"completed"`
	CompletionRate   int64             `json:"completion_rate"`
	AverageProgress  float64           `json:"average_progress"`
	Rating           float64           `json:"rating"`
	Ratings          map[int]int64     `json:"ratings"`
	Lessons          int64             `json:"lessons"`
	Enrollment       []DailyEnrollment `json:"enrollment_trend"`
}

type DailyEnrollment struct {
	Date        string `json:"date"`
	Enrollments int64  `json:"enrollments"`
}

// CourseAnalytics summarises enrollments, progress and reviews of one course.
func (s *AdminService) CourseAnalytics(ctx context.Context, id uint) (*CourseAnalytics, error) {
	db := s.db.WithContext(ctx)

	var course models.Course
	if err := db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Course not found")
		}
		return nil, fmt.Errorf("load course %d: %w", id, err)
	}

	a := &CourseAnalytics{
		CourseID:    course.ID,
		Title:       course.Title,
		IsPublished: course.IsPublished,
		Ratings:     map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	enrollments := db.Model(&models.Enrollment{}).Where("course_id = ?", id)
	if err := enrollments.Session(&gorm.Session{}).Count(&a.TotalEnrollments).Error; err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	if err := enrollments.Session(&gorm.Session{}).Where("completed_at IS NOT NULL").Count(&a.Completed).Error; err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}
	if err := enrollments.Session(&gorm.Session{}).Select("COALESCE(AVG(progress), 0)").Scan(&a.AverageProgress).Error; err != nil {
		return nil, fmt.Errorf("average progress: %w", err)
	}
	a.AverageProgress = roundRating(a.AverageProgress)
	if a.TotalEnrollments > 0 {
		a.CompletionRate = int64(math.Round(float64(a.Completed) / float64(a.TotalEnrollments) * 100))
	}

	var enrolledAt []time.Time
	if err := enrollments.Session(&gorm.Session{}).Order("enrolled_at ASC").Pluck("enrolled_at", &enrolledAt).Error; err != nil {
		return nil, fmt.Errorf("enrollment dates: %w", err)
	}
	a.Enrollment = dailyEnrollments(enrolledAt)

	var stars []struct {
		Rating int
		Total  int64
	}
	if err := db.Model(&models.Review{}).
		Select("rating, COUNT(*) AS total").
		Where("course_id = ?", id).
		Group("rating").
		Scan(&stars).Error; err != nil {
		return nil, fmt.Errorf("rating distribution: %w", err)
	}
	var sum, reviews int64
	for _, st := range stars {
		a.Ratings[st.Rating] = st.Total
		sum += int64(st.Rating) * st.Total
		reviews += st.Total
	}
	if reviews > 0 {
		a.Rating = roundRating(float64(sum) / float64(reviews))
	}

	if err := db.Model(&models.Lesson{}).Where("course_id = ?", id).Count(&a.Lessons).Error; err != nil {
		return nil, fmt.Errorf("count lessons: %w", err)
	}
	return a, nil
}

// dailyEnrollments buckets enrollment times by calendar day (UTC), oldest day first.
func dailyEnrollments(times []time.Time) []DailyEnrollment {
	counts := map[string]int64{}
	for _, t := range times {
		counts[t.UTC().Format("2006-01-02")]++
	}
	trend := make([]DailyEnrollment, 0, len(counts))
	for day, n := range counts {
		trend = append(trend, DailyEnrollment{Date: day, Enrollments: n})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

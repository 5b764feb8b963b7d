package services

import (
	"context"
	"testing"
	"time"

	"studyproject/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPublishedNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	programming := f.category(t, "Programming")
	design := f.category(t, "Design")

	older := f.course(t, programming, "Go Basics", true)
	f.course(t, programming, "Draft Course", false)
	newer := f.course(t, design, "Color Theory", true)

	courses, err := f.catalog.ListPublished(ctx, CourseFilter{})
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, newer.ID, courses[0].ID)
	assert.Equal(t, older.ID, courses[1].ID)
	require.NotNil(t, courses[0].Category)
	assert.Equal(t, "Design", courses[0].Category.Name)

	courses, err = f.catalog.ListPublished(ctx, CourseFilter{Category: "programming"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, older.ID, courses[0].ID)

	courses, err = f.catalog.ListPublished(ctx, CourseFilter{Difficulty: "advanced"})
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestCourseRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.category(t, "Programming")
	reviewed := f.course(t, category, "Reviewed", true)
	f.course(t, category, "Unreviewed", true)

	for i, rating := range []int{5, 3, 4} {
		student := f.user(t, []string{"ann", "bob", "cid"}[i])
		f.review(t, student, reviewed, rating)
	}

	courses, err := f.catalog.ListPublished(ctx, CourseFilter{})
	require.NoError(t, err)
	require.Len(t, courses, 2)

	ratings := map[string]float64{}
	for _, c := range courses {
		ratings[c.Slug] = c.Rating
	}
	assert.Equal(t, 4.0, ratings["reviewed"])
	assert.Equal(t, 0.0, ratings["unreviewed"])
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.3, roundRating(13.0/3.0))
	assert.Equal(t, 4.7, roundRating(14.0/3.0))
	assert.Equal(t, 0.0, roundRating(0))
}

func TestPopularOrdersByEnrollmentCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.category(t, "Programming")
	quiet := f.course(t, category, "Quiet", true)
	busy := f.course(t, category, "Busy", true)
	hidden := f.course(t, category, "Hidden", false)
	middling := f.course(t, category, "Middling", true)

	ann, bob, cid := f.user(t, "ann"), f.user(t, "bob"), f.user(t, "cid")
	for _, s := range []models.User{ann, bob, cid} {
		f.enrollment(t, s, busy)
		f.enrollment(t, s, hidden)
	}
	f.enrollment(t, ann, middling)

	courses, err := f.catalog.Popular(ctx, 2)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, busy.ID, courses[0].ID)
	assert.Equal(t, int64(3), courses[0].TotalEnrollments)
	assert.Equal(t, middling.ID, courses[1].ID)

	courses, err = f.catalog.Popular(ctx, 10)
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, quiet.ID, courses[2].ID)
}

func TestByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	programming := f.category(t, "Programming")
	design := f.category(t, "Design")
	f.course(t, programming, "Go Basics", true)
	f.course(t, programming, "Go Drafts", false)
	f.course(t, design, "Color Theory", true)

	category, courses, err := f.catalog.ByCategory(ctx, "programming")
	require.NoError(t, err)
	assert.Equal(t, programming.ID, category.ID)
	require.Len(t, courses, 1)
	assert.Equal(t, "go-basics", courses[0].Slug)

	_, _, err = f.catalog.ByCategory(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestCourseDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.category(t, "Programming")
	course := f.course(t, category, "Go Basics", true)
	draft := f.course(t, category, "Go Drafts", false)
	ann, bob := f.user(t, "ann"), f.user(t, "bob")
	f.enrollment(t, ann, course)
	f.review(t, bob, course, 5)

	require.NoError(t, f.db.Create(&models.Lesson{CourseID: course.ID, Title: "Second", Slug: "second", LessonType: models.LessonText, Order: 2}).Error)
	require.NoError(t, f.db.Create(&models.Lesson{CourseID: course.ID, Title: "First", Slug: "first", LessonType: models.LessonVideo, Order: 1}).Error)

	detail, err := f.catalog.CourseDetail(ctx, "go-basics", ann.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsEnrolled)
	require.NotNil(t, detail.Enrollment)
	require.Len(t, detail.Course.Lessons, 2)
	assert.Equal(t, "first", detail.Course.Lessons[0].Slug)
	require.Len(t, detail.Course.Reviews, 1)
	assert.Equal(t, "bob", detail.Course.Reviews[0].Student.Username)
	assert.Equal(t, 5.0, detail.Course.Rating)
	assert.Equal(t, int64(1), detail.Course.TotalEnrollments)

	detail, err = f.catalog.CourseDetail(ctx, "go-basics", bob.ID)
	require.NoError(t, err)
	assert.False(t, detail.IsEnrolled)

	detail, err = f.catalog.CourseDetail(ctx, "go-basics", 0)
	require.NoError(t, err)
	assert.False(t, detail.IsEnrolled)

	_, err = f.catalog.CourseDetail(ctx, draft.Slug, ann.ID)
	assert.True(t, IsNotFound(err))
}

func TestSiteStatisticsFallbacks(t *testing.T) {
	f := newFixture(t)

	stats, err := f.catalog.SiteStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stat{Fallback: true, Display: "1000+"}, stats.Students)
	assert.Equal(t, Stat{Fallback: true, Display: "50+"}, stats.Courses)
	assert.Equal(t, Stat{Fallback: true, Display: "25+"}, stats.Instructors)
	assert.Equal(t, Stat{Value: 95, Fallback: true, Display: "95%"}, stats.CompletionRate)
}

func TestSiteStatisticsCounts(t *testing.T) {
	f := newFixture(t)
	category := f.category(t, "Programming")
	mentor := f.user(t, "mentor")
	ann, bob := f.user(t, "ann"), f.user(t, "bob")

	course := f.course(t, category, "Go Basics", true)
	require.NoError(t, f.db.Model(&course).Update("instructor_id", mentor.ID).Error)
	f.course(t, category, "Go Drafts", false)
	other := f.course(t, category, "Go Advanced", true)

	done := f.enrollment(t, ann, course)
	require.NoError(t, f.db.Model(&done).Update("completed_at", time.Now()).Error)
	f.enrollment(t, ann, other)
	f.enrollment(t, bob, course)

	stats, err := f.catalog.SiteStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stat{Value: 2, Display: "2+"}, stats.Students)
	assert.Equal(t, Stat{Value: 2, Display: "2+"}, stats.Courses)
	assert.Equal(t, Stat{Value: 1, Display: "1+"}, stats.Instructors)
	assert.Equal(t, Stat{Value: 33, Display: "33%"}, stats.CompletionRate)
}

func TestCategoriesWithCounts(t *testing.T) {
	f := newFixture(t)
	programming := f.category(t, "Programming")
	f.category(t, "Design")
	f.course(t, programming, "Go Basics", true)
	f.course(t, programming, "Go Drafts", false)

	categories, err := f.catalog.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Design", categories[0].Name)
	assert.Equal(t, int64(0), categories[0].CourseCount)
	assert.Equal(t, "Programming", categories[1].Name)
	assert.Equal(t, int64(2), categories[1].CourseCount)
}

package services

import (
	"testing"

	"studyproject/backend/models"
	"studyproject/backend/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	catalog *CatalogService
	enroll  *EnrollmentService
	admin   *AdminService
	account *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &fixture{
		db:      db,
		catalog: NewCatalogService(db, log),
		enroll:  NewEnrollmentService(db, log),
		admin:   NewAdminService(db, log),
		account: NewAccountService(db, log),
	}
}

func (f *fixture) user(t *testing.T, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) category(t *testing.T, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: Slugify(name)}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) course(t *testing.T, category models.Category, title string, published bool) models.Course {
	t.Helper()
	c := models.Course{
		Title:       title,
		Slug:        Slugify(title),
		Description: title + " description",
		CategoryID:  category.ID,
		Difficulty:  models.DifficultyBeginner,
		IsPublished: published,
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) enrollment(t *testing.T, student models.User, course models.Course) models.Enrollment {
	t.Helper()
	e := models.Enrollment{StudentID: student.ID, CourseID: course.ID}
	require.NoError(t, f.db.Create(&e).Error)
	return e
}

func (f *fixture) review(t *testing.T, student models.User, course models.Course, rating int) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Review{StudentID: student.ID, CourseID: course.ID, Rating: rating}).Error)
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

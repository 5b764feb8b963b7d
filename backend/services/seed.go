package services

import (
	"context"
	"errors"

	"studyproject/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sampleCategory struct {
	Name        string
	Slug        string
	Description string
}

type sampleCourse struct {
	Title            string
	Slug             string
	ShortDescription string
	Description      string
	CategorySlug     string
	Price            float64
	Difficulty       models.Difficulty
	DurationHours    int
}

var sampleCategories = []sampleCategory{
	{Name: "Programming", Slug: "programming", Description: "Programming and software development courses"},
	{Name: "Design", Slug: "design", Description: "Graphic and web design courses"},
}

var sampleCourses = []sampleCourse{
	{
		Title:            "Python for Beginners",
		Slug:             "python-for-beginners",
		ShortDescription: "Learn Python programming from scratch",
		Description:      "A complete Python course for beginners. Learn the syntax, data structures and functions, then build your first projects.",
		CategorySlug:     "programming",
		Price:            1200,
		Difficulty:       models.DifficultyBeginner,
		DurationHours:    40,
	},
	{
		Title:            "Web Design from Scratch",
		Slug:             "web-design-from-scratch",
		ShortDescription: "Build beautiful and functional websites",
		Description:      "Learn to create modern web designs: Photoshop, Figma and the principles of UX/UI design.",
		CategorySlug:     "design",
		Price:            1800,
		Difficulty:       models.DifficultyBeginner,
		DurationHours:    35,
	},
}

// SeedSampleData makes sure the sample categories exist and adds every sample course
// whose slug is still free. It returns how many courses were added.
func (s *AdminService) SeedSampleData(ctx context.Context) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created = 0
		categoryIDs := make(map[string]uint, len(sampleCategories))
		for _, sc := range sampleCategories {
			category, err := sampleCategoryRow(tx, sc)
			if err != nil {
				return err
			}
			categoryIDs[sc.Slug] = category.ID
		}

		var instructorID *uint
		var first models.User
		switch err := tx.Order("id ASC").First(&first).Error; {
		case err == nil:
			instructorID = &first.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		for _, sc := range sampleCourses {
			course := models.Course{
				Title:            sc.Title,
				Slug:             sc.Slug,
				ShortDescription: sc.ShortDescription,
				Description:      sc.Description,
				CategoryID:       categoryIDs[sc.CategorySlug],
				InstructorID:     instructorID,
				Price:            sc.Price,
				Difficulty:       sc.Difficulty,
				DurationHours:    sc.DurationHours,
				IsPublished:      true,
			}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoNothing: true,
			}).Create(&course)
			if res.Error != nil {
				return res.Error
			}
			created += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		s.log.Error("seed sample data failed", "error", err)
		return 0, Conflict("Could not create the sample courses. Please try again.", nil, err)
	}
	s.log.Info("sample data seeded", "created", created)
	return created, nil
}

// sampleCategoryRow finds a sample category by name, then by slug, and creates it
// when neither exists.
func sampleCategoryRow(tx *gorm.DB, sc sampleCategory) (*models.Category, error) {
	var category models.Category
	err := tx.Where("name = ?", sc.Name).Or("slug = ?", sc.Slug).Order("id ASC").First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	category = models.Category{Name: sc.Name, Slug: sc.Slug, Description: sc.Description}
	if err := tx.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

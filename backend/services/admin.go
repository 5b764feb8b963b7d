package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"studyproject/backend/models"
	"studyproject/backend/utils"

	"gorm.io/gorm"
)

const (
	formErrorMessage = "Please correct the errors below."

	// maxPrice is the largest value a decimal(10,2) price column holds.
	maxPrice = 99999999.99
)

// AdminService holds the privileged operations of the admin panel.
type AdminService struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewAdminService(db *gorm.DB, baseLog *utils.Logger) *AdminService {
	return &AdminService{db: db, log: baseLog.With("service", "AdminService")}
}

// CourseForm is the admin course form as submitted. An empty CourseID creates a course.
type CourseForm struct {
	CourseID         string `form:"course_id" json:"course_id"`
	Title            string `form:"title" json:"title" validate:"required,max=200"`
	ShortDescription string `form:"short_description" json:"short_description" validate:"max=300"`
	Description      string `form:"description" json:"description" validate:"required"`
	Category         string `form:"category" json:"category" validate:"required"`
	Instructor       string `form:"instructor" json:"instructor"`
	Price            string `form:"price" json:"price"`
	Difficulty       string `form:"difficulty" json:"difficulty"`
	DurationHours    string `form:"duration_hours" json:"duration_hours"`
	IsPublished      string `form:"is_published" json:"is_published"`

	// Image is the stored image of the course being edited; never read from the request.
	Image string `form:"-" json:"image,omitempty"`
}

type CategoryForm struct {
	Name        string `form:"name" json:"name" validate:"required,max=100"`
	Description string `form:"description" json:"description"`
}

type LessonForm struct {
	Title           string `form:"title" json:"title" validate:"required,max=200"`
	Content         string `form:"content" json:"content"`
	VideoURL        string `form:"video_url" json:"video_url" validate:"omitempty,url,max=500"`
	LessonType      string `form:"lesson_type" json:"lesson_type" validate:"required"`
	Order           string `form:"order" json:"order"`
	DurationMinutes string `form:"duration_minutes" json:"duration_minutes"`
	IsFree          string `form:"is_free" json:"is_free"`
}

type CourseResult struct {
	Course  models.Course `json:"course"`
	Created bool          `json:"created"`
	// ReplacedImage is the image reference a new upload replaced, if any.
	ReplacedImage string `json:"-"`
}

type AdminCourseList struct {
	Courses          []models.Course   `json:"courses"`
	CoursesCount     int               `json:"courses_count"`
	PublishedCount   int               `json:"published_count"`
	TotalEnrollments int64             `json:"total_enrollments"`
	Categories       []models.Category `json:"categories"`
	Instructors      []models.User     `json:"instructors"`
}

// courseInput is a CourseForm after parsing.
type courseInput struct {
	id            uint
	categoryID    uint
	instructorID  *uint
	price         float64
	difficulty    models.Difficulty
	durationHours int
	published     bool
}

// UpsertCourse creates a course, or updates the one named by form.CourseID. A
// non-empty imageRef replaces the course image. The whole write is one transaction.
func (s *AdminService) UpsertCourse(ctx context.Context, form CourseForm, imageRef string) (CourseResult, error) {
	trimAll(&form.CourseID, &form.Title, &form.ShortDescription, &form.Description,
		&form.Category, &form.Instructor, &form.Price, &form.Difficulty, &form.DurationHours)

	in, fields := parseCourseForm(form)
	if len(fields) > 0 {
		return CourseResult{}, Validation(formErrorMessage, fields, form)
	}

	var result CourseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkCourseRefs(tx, in, form); err != nil {
			return err
		}

		var course models.Course
		if in.id != 0 {
			if err := tx.First(&course, in.id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return NotFound("Course not found")
				}
				return err
			}
		}
		previousImage := course.Image

		course.Title = form.Title
		course.ShortDescription = form.ShortDescription
		course.Description = form.Description
		course.CategoryID = in.categoryID
		course.InstructorID = in.instructorID
		course.Price = in.price
		course.Difficulty = in.difficulty
		course.DurationHours = in.durationHours
		course.IsPublished = in.published
		if imageRef != "" {
			course.Image = imageRef
			result.ReplacedImage = previousImage
		}

		base := baseSlug(form.Title, "course")
		keep := false
		if in.id != 0 {
			var err error
			if keep, err = keepsSlug(tx, courseSlugs(in.id), course.Slug, base); err != nil {
				return err
			}
		}
		if keep {
			if err := tx.Save(&course).Error; err != nil {
				return err
			}
		} else {
			_, err := writeWithUniqueSlug(tx, courseSlugs(in.id), base, func(sp *gorm.DB, slug string) error {
				course.Slug = slug
				if in.id == 0 {
					course.ID = 0
					return sp.Create(&course).Error
				}
				return sp.Save(&course).Error
			})
			if err != nil {
				return err
			}
		}

		result.Created = in.id == 0
		return tx.Preload("Category").Preload("Instructor").First(&result.Course, course.ID).Error
	})
	if err != nil {
		if e, ok := AsError(err); ok {
			return CourseResult{}, e
		}
		s.log.Error("save course failed", "course_id", in.id, "title", form.Title, "error", err)
		return CourseResult{}, Conflict("Could not save the course. Please try again.", form, err)
	}

	if result.Created {
		s.log.Info("course created", "course_id", result.Course.ID, "slug", result.Course.Slug)
	} else {
		s.log.Info("course updated", "course_id", result.Course.ID, "slug", result.Course.Slug)
	}
	return result, nil
}

func (s *AdminService) checkCourseRefs(tx *gorm.DB, in courseInput, form CourseForm) error {
	var n int64
	if err := tx.Model(&models.Category{}).Where("id = ?", in.categoryID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return Validation(formErrorMessage, map[string]string{"category": "selected category does not exist"}, form)
	}
	if in.instructorID == nil {
		return nil
	}
	if err := tx.Model(&models.User{}).Where("id = ?", *in.instructorID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return Validation(formErrorMessage, map[string]string{"instructor": "selected instructor does not exist"}, form)
	}
	return nil
}

func parseCourseForm(form CourseForm) (courseInput, map[string]string) {
	fields := validateForm(form)
	if fields == nil {
		fields = map[string]string{}
	}
	in := courseInput{difficulty: models.DifficultyBeginner, published: checked(form.IsPublished)}

	if form.CourseID != "" {
		id, err := strconv.ParseUint(form.CourseID, 10, 64)
		if err != nil || id == 0 {
			fields["course_id"] = "course_id must be a course identifier"
		}
		in.id = uint(id)
	}
	if _, bad := fields["category"]; !bad {
		id, err := strconv.ParseUint(form.Category, 10, 64)
		if err != nil || id == 0 {
			fields["category"] = "select a valid category"
		}
		in.categoryID = uint(id)
	}
	if form.Instructor != "" {
		id, err := strconv.ParseUint(form.Instructor, 10, 64)
		if err != nil || id == 0 {
			fields["instructor"] = "select a valid instructor"
		} else {
			instructorID := uint(id)
			in.instructorID = &instructorID
		}
	}
	if form.Price != "" {
		price, err := strconv.ParseFloat(form.Price, 64)
		switch {
		case err != nil || price < 0 || math.IsInf(price, 0) || math.IsNaN(price):
			fields["price"] = "price must be a non-negative number"
		case price > maxPrice:
			fields["price"] = "price must not exceed 99999999.99"
		}
		in.price = math.Round(price*100) / 100
	}
	if form.Difficulty != "" {
		in.difficulty = models.Difficulty(form.Difficulty)
		if !in.difficulty.Valid() {
			fields["difficulty"] = "difficulty must be one of beginner, intermediate, advanced"
		}
	}
	if form.DurationHours != "" {
		hours, err := strconv.Atoi(form.DurationHours)
		if err != nil || hours < 0 {
			fields["duration_hours"] = "duration_hours must be a non-negative whole number"
		}
		in.durationHours = hours
	}
	return in, fields
}

// CourseForm returns the edit form of a course filled with its stored values.
func (s *AdminService) CourseForm(ctx context.Context, id uint) (CourseForm, error) {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CourseForm{}, NotFound("Course not found")
		}
		return CourseForm{}, fmt.Errorf("load course %d: %w", id, err)
	}

	form := CourseForm{
		CourseID:         strconv.FormatUint(uint64(course.ID), 10),
		Title:            course.Title,
		ShortDescription: course.ShortDescription,
		Description:      course.Description,
		Category:         strconv.FormatUint(uint64(course.CategoryID), 10),
		Price:            strconv.FormatFloat(course.Price, 'f', 2, 64),
		Difficulty:       string(course.Difficulty),
		DurationHours:    strconv.Itoa(course.DurationHours),
		Image:            course.Image,
	}
	if course.InstructorID != nil {
		form.Instructor = strconv.FormatUint(uint64(*course.InstructorID), 10)
	}
	if course.IsPublished {
		form.IsPublished = "on"
	}
	return form, nil
}

// DeleteCourse removes a course with its lessons, enrollments and reviews. It returns
// the title and image reference the course had.
func (s *AdminService) DeleteCourse(ctx context.Context, id uint) (title, image string, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Course not found")
			}
			return err
		}
		title, image = course.Title, course.Image

		for _, dependent := range []interface{}{&models.Lesson{}, &models.Enrollment{}, &models.Review{}} {
			if err := tx.Where("course_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		if e, ok := AsError(err); ok {
			return "", "", e
		}
		s.log.Error("delete course failed", "course_id", id, "error", err)
		return "", "", Conflict("Could not delete the course. Please try again.", nil, err)
	}
	s.log.Info("course deleted", "course_id", id, "title", title)
	return title, image, nil
}

// ListCoursesForAdmin lists every course, published or not, newest first, with the
// totals and choices the admin page shows.
func (s *AdminService) ListCoursesForAdmin(ctx context.Context) (AdminCourseList, error) {
	db := s.db.WithContext(ctx)
	list := AdminCourseList{}

	if err := db.Preload("Category").Preload("Instructor").
		Order("created_at DESC, id DESC").
		Find(&list.Courses).Error; err != nil {
		return AdminCourseList{}, fmt.Errorf("list courses: %w", err)
	}
	if err := attachStats(db, list.Courses); err != nil {
		return AdminCourseList{}, err
	}
	list.CoursesCount = len(list.Courses)
	for _, c := range list.Courses {
		if c.IsPublished {
			list.PublishedCount++
		}
		list.TotalEnrollments += c.TotalEnrollments
	}

	var err error
	if list.Categories, err = categoriesWithCounts(db); err != nil {
		return AdminCourseList{}, err
	}
	if err := db.Order("username ASC").Find(&list.Instructors).Error; err != nil {
		return AdminCourseList{}, fmt.Errorf("list instructors: %w", err)
	}
	return list, nil
}

// CreateCategory adds a category. The name must not be taken.
func (s *AdminService) CreateCategory(ctx context.Context, form CategoryForm) (*models.Category, error) {
	trimAll(&form.Name, &form.Description)
	if fields := validateForm(form); len(fields) > 0 {
		return nil, Validation(formErrorMessage, fields, form)
	}

	category := models.Category{
		Name:        form.Name,
		Slug:        baseSlug(form.Name, "category"),
		Description: form.Description,
	}
	db := s.db.WithContext(ctx)
	if err := db.Create(&category).Error; err != nil {
		return nil, s.categoryWriteError(db, form, 0, err)
	}
	s.log.Info("category created", "category_id", category.ID, "name", category.Name)
	return &category, nil
}

// UpdateCategory renames a category. The slug follows the name on every save.
func (s *AdminService) UpdateCategory(ctx context.Context, id uint, form CategoryForm) (*models.Category, error) {
	trimAll(&form.Name, &form.Description)
	if fields := validateForm(form); len(fields) > 0 {
		return nil, Validation(formErrorMessage, fields, form)
	}

	db := s.db.WithContext(ctx)
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = form.Name
	category.Slug = baseSlug(form.Name, "category")
	category.Description = form.Description
	if err := db.Save(category).Error; err != nil {
		return nil, s.categoryWriteError(db, form, id, err)
	}
	s.log.Info("category updated", "category_id", id, "name", category.Name)
	return category, nil
}

// categoryWriteError turns a failed category write into a Conflict the form can show.
func (s *AdminService) categoryWriteError(db *gorm.DB, form CategoryForm, id uint, err error) error {
	if !isUniqueViolation(err) {
		s.log.Error("save category failed", "name", form.Name, "error", err)
		return Conflict("Could not save the category. Please try again.", form, err)
	}
	var sameName int64
	if cerr := db.Model(&models.Category{}).Where("name = ? AND id <> ?", form.Name, id).Count(&sameName).Error; cerr != nil {
		s.log.Warn("count categories by name failed", "name", form.Name, "error", cerr)
		return Conflict(fmt.Sprintf("Category %q already exists.", form.Name), form, err)
	}
	if sameName > 0 {
		return Conflict(fmt.Sprintf("Category %q already exists.", form.Name), form, err)
	}
	return Conflict(fmt.Sprintf("A category with the same address as %q already exists.", form.Name), form, err)
}

// DeleteCategory removes a category that no course uses.
func (s *AdminService) DeleteCategory(ctx context.Context, id uint) (string, error) {
	var name string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Category not found")
			}
			return err
		}
		name = category.Name

		var courses int64
		if err := tx.Model(&models.Course{}).Where("category_id = ?", id).Count(&courses).Error; err != nil {
			return err
		}
		if courses > 0 {
			return blockedCategory(name, courses, nil)
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		if e, ok := AsError(err); ok {
			return "", e
		}
		if isForeignKeyViolation(err) {
			return "", s.blockedByCourses(s.db.WithContext(ctx), id, name, err)
		}
		s.log.Error("delete category failed", "category_id", id, "error", err)
		return "", Conflict("Could not delete the category. Please try again.", nil, err)
	}
	s.log.Info("category deleted", "category_id", id, "name", name)
	return name, nil
}

// blockedByCourses is the Conflict for a category delete the foreign key refused.
func (s *AdminService) blockedByCourses(db *gorm.DB, id uint, name string, cause error) *Error {
	var courses int64
	if err := db.Model(&models.Course{}).Where("category_id = ?", id).Count(&courses).Error; err != nil {
		s.log.Warn("count courses of category failed", "category_id", id, "error", err)
		return Conflict(fmt.Sprintf("Cannot delete category %q: it still has courses.", name), nil, cause)
	}
	return blockedCategory(name, courses, cause)
}

func blockedCategory(name string, courses int64, cause error) *Error {
	return Conflict(fmt.Sprintf("Cannot delete category %q: it has %d course(s).", name, courses), nil, cause)
}

func (s *AdminService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return categoriesWithCounts(s.db.WithContext(ctx))
}

func (s *AdminService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	db := s.db.WithContext(ctx)
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Category not found")
		}
		return nil, fmt.Errorf("load category %d: %w", id, err)
	}
	if err := db.Model(&models.Course{}).Where("category_id = ?", id).Count(&category.CourseCount).Error; err != nil {
		return nil, fmt.Errorf("count courses of category %d: %w", id, err)
	}
	return &category, nil
}

// ListEnrollmentsForAdmin lists every enrollment with its student and course,
// most recently enrolled first.
func (s *AdminService) ListEnrollmentsForAdmin(ctx context.Context) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Course").
		Order("enrolled_at DESC, id DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// AddLesson appends a lesson to a course. Without an explicit order the lesson goes last.
func (s *AdminService) AddLesson(ctx context.Context, courseID uint, form LessonForm) (*models.Lesson, error) {
	trimAll(&form.Title, &form.Content, &form.VideoURL, &form.LessonType, &form.Order, &form.DurationMinutes)
	fields := validateForm(form)
	if fields == nil {
		fields = map[string]string{}
	}

	lesson := models.Lesson{
		CourseID:   courseID,
		Title:      form.Title,
		Content:    form.Content,
		VideoURL:   form.VideoURL,
		LessonType: models.LessonType(form.LessonType),
		IsFree:     checked(form.IsFree),
	}
	if _, bad := fields["lesson_type"]; !bad && !lesson.LessonType.Valid() {
		fields["lesson_type"] = "lesson_type must be one of video, text, assignment"
	}
	explicitOrder := form.Order != ""
	if explicitOrder {
		order, err := strconv.Atoi(form.Order)
		if err != nil || order < 0 {
			fields["order"] = "order must be a non-negative whole number"
		}
		lesson.Order = order
	}
	if form.DurationMinutes != "" {
		minutes, err := strconv.Atoi(form.DurationMinutes)
		if err != nil || minutes < 0 {
			fields["duration_minutes"] = "duration_minutes must be a non-negative whole number"
		}
		lesson.DurationMinutes = minutes
	}
	if len(fields) > 0 {
		return nil, Validation(formErrorMessage, fields, form)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Course{}).Where("id = ?", courseID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return NotFound("Course not found")
		}
		if !explicitOrder {
			var last int
			if err := tx.Model(&models.Lesson{}).
				Where("course_id = ?", courseID).
				Select("COALESCE(MAX(sort_order), 0)").
				Scan(&last).Error; err != nil {
				return err
			}
			lesson.Order = last + 1
		}

		_, err := writeWithUniqueSlug(tx, lessonSlugs(courseID), baseSlug(form.Title, "lesson"), func(sp *gorm.DB, slug string) error {
			lesson.ID = 0
			lesson.Slug = slug
			return sp.Create(&lesson).Error
		})
		return err
	})
	if err != nil {
		if e, ok := AsError(err); ok {
			return nil, e
		}
		s.log.Error("add lesson failed", "course_id", courseID, "error", err)
		return nil, Conflict("Could not save the lesson. Please try again.", form, err)
	}
	s.log.Info("lesson added", "course_id", courseID, "lesson_id", lesson.ID, "slug", lesson.Slug)
	return &lesson, nil
}

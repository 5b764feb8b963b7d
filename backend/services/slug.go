package services

import (
	"fmt"
	"regexp"
	"strings"

	"studyproject/backend/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// slugAttempts bounds how often a write is retried after losing a slug race.
const slugAttempts = 5

var numericSuffix = regexp.MustCompile(`^-[0-9]+$`)

// Slugify lower-cases s, transliterates it to ASCII and joins words with "-".
func Slugify(s string) string {
	return slug.Make(s)
}

func baseSlug(title, fallback string) string {
	if base := Slugify(title); base != "" {
		return base
	}
	return fallback
}

// slugBelongsTo reports whether stored was generated from base, either as base
// itself or as one of its "-<n>" variants.
func slugBelongsTo(stored, base string) bool {
	if stored == base {
		return true
	}
	rest := strings.TrimPrefix(stored, base)
	return rest != stored && numericSuffix.MatchString(rest)
}

// keepsSlug reports whether a record editing its title may keep its stored slug:
// the stored slug is the title's base, or a "-<n>" variant of it while another record
// in space still holds the base itself.
func keepsSlug(tx *gorm.DB, space slugSpace, stored, base string) (bool, error) {
	if stored == base {
		return true, nil
	}
	if !slugBelongsTo(stored, base) {
		return false, nil
	}
	var holders int64
	if err := space.query(tx).Where("slug = ?", base).Count(&holders).Error; err != nil {
		return false, err
	}
	return holders > 0, nil
}

// nextFreeSlug picks base, then base-1, base-2, ... skipping everything in taken.
func nextFreeSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[s] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}

// slugSpace is one namespace in which slugs must be unique.
type slugSpace struct {
	model   interface{}
	scope   func(*gorm.DB) *gorm.DB
	exclude uint
}

func (sp slugSpace) query(tx *gorm.DB) *gorm.DB {
	q := tx.Model(sp.model)
	if sp.scope != nil {
		q = sp.scope(q)
	}
	if sp.exclude != 0 {
		q = q.Where("id <> ?", sp.exclude)
	}
	return q
}

func courseSlugs(excludeID uint) slugSpace {
	return slugSpace{model: &models.Course{}, exclude: excludeID}
}

func lessonSlugs(courseID uint) slugSpace {
	return slugSpace{
		model: &models.Lesson{},
		scope: func(db *gorm.DB) *gorm.DB { return db.Where("course_id = ?", courseID) },
	}
}

// writeWithUniqueSlug picks a free slug in space and hands it to write, which runs
// under a savepoint. The unique index has the last word: when a concurrent writer
// claimed the candidate first, the savepoint is rolled back and the next free slug
// is tried.
func writeWithUniqueSlug(tx *gorm.DB, space slugSpace, base string, write func(tx *gorm.DB, slug string) error) (string, error) {
	var lastErr error
	for attempt := 0; attempt < slugAttempts; attempt++ {
		var taken []string
		if err := space.query(tx).Where("slug = ? OR slug LIKE ?", base, base+"-%").Pluck("slug", &taken).Error; err != nil {
			return "", err
		}

		candidate := nextFreeSlug(base, taken)
		err := tx.Transaction(func(sp *gorm.DB) error {
			return write(sp, candidate)
		})
		if err == nil {
			return candidate, nil
		}
		if !isUniqueViolation(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormTranslationRepository implements catalog.TranslationRepository using
// GORM. A missing row is not an error; the caller falls back to the source
// text.
type GormTranslationRepository struct {
	db *gorm.DB
}

var _ catalog.TranslationRepository = (*GormTranslationRepository)(nil)

// NewGormTranslationRepository creates a new GORM-based translation
// repository.
func NewGormTranslationRepository(db *gorm.DB) *GormTranslationRepository {
	return &GormTranslationRepository{db: db}
}

// Lookup returns the translated text for the exact source text
func (r *GormTranslationRepository) Lookup(ctx context.Context, sourceText string) (string, bool, error) {
	var model models.TranslationModel
	err := r.db.WithContext(ctx).
		Where("source_text = ?", sourceText).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.TranslatedText, true, nil
}

// Save creates or updates a translation row
func (r *GormTranslationRepository) Save(ctx context.Context, translation catalog.Translation) error {
	model := models.TranslationModel{
		SourceText:     translation.SourceText,
		TranslatedText: translation.TranslatedText,
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

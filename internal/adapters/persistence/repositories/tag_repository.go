package repositories

import (
	"context"

	"epersmip-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// tagRepository implements TagRepository interface
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// FirstOrCreateAuthor finds or creates an author by name
func (r *tagRepository) FirstOrCreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	var author models.Author
	err := r.db.WithContext(ctx).
		Where(models.Author{Name: name}).
		FirstOrCreate(&author).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// FirstOrCreateCategory finds or creates a category by name
func (r *tagRepository) FirstOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where(models.Category{Name: name}).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories lists all categories sorted by name
func (r *tagRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// ListAuthors lists all authors sorted by name
func (r *tagRepository) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	var authors []*models.Author
	err := r.db.WithContext(ctx).Order("name ASC").Find(&authors).Error
	return authors, err
}

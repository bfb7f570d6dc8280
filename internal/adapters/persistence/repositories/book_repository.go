package repositories

import (
	"context"

	"epersmip-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// bookRepository implements BookRepository interface
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book with its tag associations
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book by ID with authors and categories
func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Preload("Authors").
		Preload("Categories").
		First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Update updates book columns (not associations)
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Omit("Authors", "Categories").Save(book).Error
}

// ReplaceTags replaces the book's author and category associations
func (r *bookRepository) ReplaceTags(ctx context.Context, book *models.Book, authors []models.Author, categories []models.Category) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Model(book).Association("Authors").Replace(authors); err != nil {
		return err
	}
	return tx.Model(book).Association("Categories").Replace(categories)
}

// Delete soft deletes a book
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

// List lists books with pagination and optional title/publisher search
func (r *bookRepository) List(ctx context.Context, offset, limit int, search string) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Book{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR publisher LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Authors").
		Preload("Categories").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// ReserveStock atomically decrements amount. The guard in the WHERE clause
// makes the out-of-stock check race-free.
func (r *bookRepository) ReserveStock(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND amount > 0", id).
		UpdateColumn("amount", gorm.Expr("amount - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseStock increments amount back after a return or rejection
func (r *bookRepository) ReleaseStock(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("amount", gorm.Expr("amount + 1")).Error
}

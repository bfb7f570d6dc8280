package repositories

import (
	"context"
	"errors"
	"time"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/core/workflow"

	"gorm.io/gorm"
)

// borrowRepository implements BorrowRepository interface
type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository creates a new borrow repository
func NewBorrowRepository(db *gorm.DB) BorrowRepository {
	return &borrowRepository{db: db}
}

// Create creates a new borrow
func (r *borrowRepository) Create(ctx context.Context, borrow *models.Borrow) error {
	return r.db.WithContext(ctx).Create(borrow).Error
}

// GetByID gets a borrow by ID with relations
func (r *borrowRepository) GetByID(ctx context.Context, id uint) (*models.Borrow, error) {
	var borrow models.Borrow
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Preload("Book.Authors").
		Preload("Book.Categories").
		First(&borrow, id).Error
	if err != nil {
		return nil, err
	}
	return &borrow, nil
}

// Update updates a borrow
func (r *borrowRepository) Update(ctx context.Context, borrow *models.Borrow) error {
	return r.db.WithContext(ctx).Save(borrow).Error
}

// List lists borrows with pagination and optional status filter
func (r *borrowRepository) List(ctx context.Context, offset, limit int, status workflow.Status) ([]*models.Borrow, int64, error) {
	var borrows []*models.Borrow
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Borrow{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Preload("Book").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&borrows).Error

	return borrows, total, err
}

// ListByUser lists all borrows of a user, newest first
func (r *borrowRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Borrow, error) {
	var borrows []*models.Borrow
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Book.Authors").
		Preload("Book.Categories").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&borrows).Error
	return borrows, err
}

// ListByUserAndBook lists a user's borrows of one book (review history check)
func (r *borrowRepository) ListByUserAndBook(ctx context.Context, userID, bookID uint) ([]*models.Borrow, error) {
	var borrows []*models.Borrow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("created_at DESC").
		Find(&borrows).Error
	return borrows, err
}

// GetOpenByUser returns the user's single non-terminal borrow, or nil
func (r *borrowRepository) GetOpenByUser(ctx context.Context, userID uint) (*models.Borrow, error) {
	var borrow models.Borrow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status IN ?", []workflow.Status{workflow.StatusMenunggu, workflow.StatusDipinjam}).
		First(&borrow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &borrow, nil
}

// ListOverdue lists active loans older than the given cutoff
func (r *borrowRepository) ListOverdue(ctx context.Context, since time.Time) ([]*models.Borrow, error) {
	var borrows []*models.Borrow
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Book").
		Where("status = ?", workflow.StatusDipinjam).
		Where("borrow_date < ?", since).
		Order("borrow_date ASC").
		Find(&borrows).Error
	return borrows, err
}

// borrowLogRepository implements BorrowLogRepository interface
type borrowLogRepository struct {
	db *gorm.DB
}

// NewBorrowLogRepository creates a new borrow log repository
func NewBorrowLogRepository(db *gorm.DB) BorrowLogRepository {
	return &borrowLogRepository{db: db}
}

// Create appends an audit row
func (r *borrowLogRepository) Create(ctx context.Context, log *models.BorrowLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByBorrow gets the audit trail of a borrow, newest first
func (r *borrowLogRepository) ListByBorrow(ctx context.Context, borrowID uint) ([]*models.BorrowLog, error) {
	var logs []*models.BorrowLog
	err := r.db.WithContext(ctx).
		Preload("Performer").
		Where("borrow_id = ?", borrowID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

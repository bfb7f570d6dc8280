package repositories

import (
	"context"
	"time"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/core/workflow"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int, search string) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNim(ctx context.Context, nim string) (bool, error)
	CountAdmins(ctx context.Context) (int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// BookRepository defines book repository interface
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	ReplaceTags(ctx context.Context, book *models.Book, authors []models.Author, categories []models.Category) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int, search string) ([]*models.Book, int64, error)
	// ReserveStock atomically decrements amount; false when out of stock.
	ReserveStock(ctx context.Context, id uint) (bool, error)
	// ReleaseStock hands a reserved copy back to the shelf.
	ReleaseStock(ctx context.Context, id uint) error
}

// BorrowRepository defines borrow repository interface
type BorrowRepository interface {
	Create(ctx context.Context, borrow *models.Borrow) error
	GetByID(ctx context.Context, id uint) (*models.Borrow, error)
	Update(ctx context.Context, borrow *models.Borrow) error
	List(ctx context.Context, offset, limit int, status workflow.Status) ([]*models.Borrow, int64, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Borrow, error)
	ListByUserAndBook(ctx context.Context, userID, bookID uint) ([]*models.Borrow, error)
	// GetOpenByUser returns the user's single non-terminal borrow, or nil.
	GetOpenByUser(ctx context.Context, userID uint) (*models.Borrow, error)
	ListOverdue(ctx context.Context, since time.Time) ([]*models.Borrow, error)
}

// BorrowLogRepository defines borrow audit log repository interface
type BorrowLogRepository interface {
	Create(ctx context.Context, log *models.BorrowLog) error
	ListByBorrow(ctx context.Context, borrowID uint) ([]*models.BorrowLog, error)
}

// ReviewRepository defines review repository interface
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	GetByUserAndBook(ctx context.Context, userID, bookID uint) (*models.Review, error)
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error
	ListByBook(ctx context.Context, bookID uint) ([]*models.Review, error)
}

// TagRepository defines author/category tag repository interface
type TagRepository interface {
	FirstOrCreateAuthor(ctx context.Context, name string) (*models.Author, error)
	FirstOrCreateCategory(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListAuthors(ctx context.Context) ([]*models.Author, error)
}

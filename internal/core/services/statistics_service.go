package services

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// StatisticsService handles library statistics operations
type StatisticsService struct {
	db *gorm.DB
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(db *gorm.DB) *StatisticsService {
	return &StatisticsService{db: db}
}

// SummaryData represents the admin statistics summary
type SummaryData struct {
	// Collection
	TotalBooks  int64 `json:"total_books"`
	TotalCopies int64 `json:"total_copies"`

	// Users
	TotalUsers  int64 `json:"total_users"`
	ActiveUsers int64 `json:"active_users"`

	// Borrows by status
	TotalBorrows    int64 `json:"total_borrows"`
	PendingBorrows  int64 `json:"pending_borrows"`
	ActiveBorrows   int64 `json:"active_borrows"`
	ReturnedBorrows int64 `json:"returned_borrows"`
	RejectedBorrows int64 `json:"rejected_borrows"`

	// This month
	BorrowsThisMonth int64 `json:"borrows_this_month"`

	// Reviews
	TotalReviews int64   `json:"total_reviews"`
	AverageScore float64 `json:"average_score"`
}

// GetSummary returns the statistics summary
func (s *StatisticsService) GetSummary(ctx context.Context) (*SummaryData, error) {
	data := &SummaryData{}

	// Collection size
	s.db.WithContext(ctx).Table("books").Where("deleted_at IS NULL").Count(&data.TotalBooks)
	s.db.WithContext(ctx).Table("books").
		Where("deleted_at IS NULL").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.TotalCopies)

	// User counts
	s.db.WithContext(ctx).Table("users").Where("deleted_at IS NULL").Count(&data.TotalUsers)
	s.db.WithContext(ctx).Table("users").Where("is_active = ? AND deleted_at IS NULL", true).Count(&data.ActiveUsers)

	// Borrow counts by status
	s.db.WithContext(ctx).Table("borrows").Count(&data.TotalBorrows)
	s.db.WithContext(ctx).Table("borrows").Where("status = ?", "menunggu").Count(&data.PendingBorrows)
	s.db.WithContext(ctx).Table("borrows").Where("status = ?", "dipinjam").Count(&data.ActiveBorrows)
	s.db.WithContext(ctx).Table("borrows").Where("status = ?", "dikembalikan").Count(&data.ReturnedBorrows)
	s.db.WithContext(ctx).Table("borrows").Where("status = ?", "ditolak").Count(&data.RejectedBorrows)

	// This month
	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("borrows").
		Where("created_at >= ?", startOfMonth).
		Count(&data.BorrowsThisMonth)

	// Reviews
	s.db.WithContext(ctx).Table("reviews").Count(&data.TotalReviews)
	s.db.WithContext(ctx).Table("reviews").
		Select("COALESCE(AVG(review_score), 0)").
		Scan(&data.AverageScore)

	return data, nil
}

// MonthlyBorrows represents borrow counts for one calendar month
type MonthlyBorrows struct {
	Month    string `json:"month"`
	Total    int64  `json:"total"`
	Returned int64  `json:"returned"`
	Rejected int64  `json:"rejected"`
}

// GetBorrowsByMonth returns borrow counts per month for the last 12 months
func (s *StatisticsService) GetBorrowsByMonth(ctx context.Context) ([]MonthlyBorrows, error) {
	since := time.Now().AddDate(-1, 0, 0)

	var rows []struct {
		Month    string
		Total    int64
		Returned int64
		Rejected int64
	}
	err := s.db.WithContext(ctx).Table("borrows").
		Select(`
			DATE_FORMAT(created_at, '%Y-%m') as month,
			COUNT(*) as total,
			SUM(CASE WHEN status = 'dikembalikan' THEN 1 ELSE 0 END) as returned,
			SUM(CASE WHEN status = 'ditolak' THEN 1 ELSE 0 END) as rejected
		`).
		Where("created_at >= ?", since).
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]MonthlyBorrows, len(rows))
	for i, r := range rows {
		result[i] = MonthlyBorrows{
			Month:    r.Month,
			Total:    r.Total,
			Returned: r.Returned,
			Rejected: r.Rejected,
		}
	}
	return result, nil
}

// PopularBook represents a book ranked by borrow count
type PopularBook struct {
	BookID       uint    `json:"book_id"`
	Title        string  `json:"title"`
	BorrowCount  int64   `json:"borrow_count"`
	AverageScore float64 `json:"average_score"`
}

// GetPopularBooks returns the most borrowed books
func (s *StatisticsService) GetPopularBooks(ctx context.Context, limit int) ([]PopularBook, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var rows []struct {
		BookID       uint
		Title        string
		BorrowCount  int64
		AverageScore float64
	}
	err := s.db.WithContext(ctx).Table("borrows").
		Select(`
			borrows.book_id,
			books.title,
			COUNT(*) as borrow_count,
			COALESCE((SELECT AVG(review_score) FROM reviews WHERE reviews.book_id = borrows.book_id), 0) as average_score
		`).
		Joins("JOIN books ON borrows.book_id = books.id").
		Where("borrows.status IN ? AND books.deleted_at IS NULL", []string{"dipinjam", "dikembalikan"}).
		Group("borrows.book_id, books.title").
		Order("borrow_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]PopularBook, len(rows))
	for i, r := range rows {
		result[i] = PopularBook{
			BookID:       r.BookID,
			Title:        r.Title,
			BorrowCount:  r.BorrowCount,
			AverageScore: r.AverageScore,
		}
	}
	return result, nil
}

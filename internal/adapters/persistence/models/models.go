package models

import (
	"time"

	"epersmip-backend/internal/core/workflow"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FullName  string         `gorm:"size:100;not null" json:"full_name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Nim       *string        `gorm:"uniqueIndex;size:20" json:"nim,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'user'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Nim       *string   `json:"nim,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Nim:       u.Nim,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Catalog Tables
// ============================================================

// Author is a name tag attached to books (many-to-many, no lifecycle)
type Author struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (Author) TableName() string {
	return "authors"
}

// Category is a name tag attached to books (many-to-many, no lifecycle)
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

// Book represents books table. Amount is the sole availability signal;
// amount > 0 means borrowable.
type Book struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"size:200;not null;index" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Amount        int            `gorm:"not null;default:0" json:"amount"`
	Publisher     string         `gorm:"size:100" json:"publisher"`
	PublishedDate *time.Time     `gorm:"type:date" json:"published_date"`
	Image         string         `gorm:"type:longtext" json:"image,omitempty"`
	Authors       []Author       `gorm:"many2many:book_authors" json:"authors"`
	Categories    []Category     `gorm:"many2many:book_categories" json:"categories"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// BookResponse DTO
type BookResponse struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Amount        int        `json:"amount"`
	Publisher     string     `json:"publisher"`
	PublishedDate *time.Time `json:"published_date"`
	Image         string     `json:"image,omitempty"`
	Authors       []string   `json:"authors"`
	Categories    []string   `json:"categories"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (b *Book) ToResponse() *BookResponse {
	resp := &BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Description:   b.Description,
		Amount:        b.Amount,
		Publisher:     b.Publisher,
		PublishedDate: b.PublishedDate,
		Image:         b.Image,
		Authors:       make([]string, len(b.Authors)),
		Categories:    make([]string, len(b.Categories)),
		CreatedAt:     b.CreatedAt,
	}
	for i, a := range b.Authors {
		resp.Authors[i] = a.Name
	}
	for i, c := range b.Categories {
		resp.Categories[i] = c.Name
	}
	return resp
}

// ============================================================
// Circulation Tables
// ============================================================

// Borrow links one user to one book with a lifecycle status
// (menunggu → dipinjam → dikembalikan, or menunggu → ditolak).
type Borrow struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	BookID     uint            `gorm:"not null;index" json:"book_id"`
	Status     workflow.Status `gorm:"size:20;not null;index" json:"status"`
	BorrowDate time.Time       `gorm:"not null" json:"borrow_date"`
	ReturnDate *time.Time      `json:"return_date"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"borrower,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Borrow) TableName() string {
	return "borrows"
}

// BorrowResponse DTO
type BorrowResponse struct {
	ID         uint            `json:"id"`
	Status     workflow.Status `json:"status"`
	BorrowDate time.Time       `json:"borrow_date"`
	ReturnDate *time.Time      `json:"return_date"`
	Borrower   *UserResponse   `json:"borrower,omitempty"`
	Book       *BookResponse   `json:"book,omitempty"`
}

func (b *Borrow) ToResponse() *BorrowResponse {
	resp := &BorrowResponse{
		ID:         b.ID,
		Status:     b.Status,
		BorrowDate: b.BorrowDate,
		ReturnDate: b.ReturnDate,
	}
	if b.User != nil {
		resp.Borrower = b.User.ToResponse()
	}
	if b.Book != nil {
		resp.Book = b.Book.ToResponse()
	}
	return resp
}

// BorrowLog is the audit trail of status transitions on a borrow
type BorrowLog struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	BorrowID    uint             `gorm:"not null;index" json:"borrow_id"`
	FromStatus  *workflow.Status `gorm:"size:20" json:"from_status"`
	ToStatus    workflow.Status  `gorm:"size:20;not null" json:"to_status"`
	PerformedBy uint             `gorm:"not null" json:"performed_by"`
	Remark      string           `gorm:"type:text" json:"remark"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Borrow    *Borrow `gorm:"foreignKey:BorrowID" json:"borrow,omitempty"`
	Performer *User   `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
}

func (BorrowLog) TableName() string {
	return "borrow_logs"
}

// Review represents reviews table. At most one review per (owner, book).
type Review struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_owner_book" json:"user_id"`
	BookID      uint      `gorm:"not null;uniqueIndex:idx_owner_book" json:"book_id"`
	ReviewScore int       `gorm:"not null;check:review_score >= 1 AND review_score <= 5" json:"review_score"`
	ReviewText  string    `gorm:"type:text" json:"review_text"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"owner,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewResponse DTO
type ReviewResponse struct {
	ID          uint          `json:"id"`
	BookID      uint          `json:"book_id"`
	ReviewScore int           `json:"review_score"`
	ReviewText  string        `json:"review_text"`
	CreatedAt   time.Time     `json:"created_at"`
	Owner       *UserResponse `json:"owner,omitempty"`
}

func (r *Review) ToResponse() *ReviewResponse {
	resp := &ReviewResponse{
		ID:          r.ID,
		BookID:      r.BookID,
		ReviewScore: r.ReviewScore,
		ReviewText:  r.ReviewText,
		CreatedAt:   r.CreatedAt,
	}
	if r.User != nil {
		resp.Owner = r.User.ToResponse()
	}
	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Author{},
		&Category{},
		&Book{},
		&Borrow{},
		&BorrowLog{},
		&Review{},
	)
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/adapters/persistence/repositories"
	"epersmip-backend/internal/core/domain"

	"gorm.io/gorm"
)

// Book service errors
var (
	ErrBookNotFound = domain.ErrBookNotFound
	ErrInvalidDate  = errors.New("invalid date format, use YYYY-MM-DD")
)

// BookService handles catalog business logic
type BookService struct {
	bookRepo repositories.BookRepository
	tagRepo  repositories.TagRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo repositories.BookRepository, tagRepo repositories.TagRepository) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		tagRepo:  tagRepo,
	}
}

// BookInput represents create/update book input. Authors and categories are
// plain names; unknown tags are created on the fly.
type BookInput struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description,omitempty"`
	Amount        int      `json:"amount" validate:"gte=0"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Image         string   `json:"image,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// Create creates a new book
func (s *BookService) Create(ctx context.Context, input *BookInput) (*models.Book, error) {
	publishedDate, err := parseDate(input.PublishedDate)
	if err != nil {
		return nil, err
	}

	authors, categories, err := s.resolveTags(ctx, input.Authors, input.Categories)
	if err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:         input.Title,
		Description:   input.Description,
		Amount:        input.Amount,
		Publisher:     input.Publisher,
		PublishedDate: publishedDate,
		Image:         input.Image,
		Authors:       authors,
		Categories:    categories,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// GetByID gets a book by ID
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// ListInput represents list books input
type ListBooksInput struct {
	Page   int
	Limit  int
	Search string
}

// ListBooksOutput represents list books output
type ListBooksOutput struct {
	Books []*models.Book `json:"books"`
	Total int64          `json:"total"`
}

// List lists books with pagination
func (s *BookService) List(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	offset := (input.Page - 1) * input.Limit
	books, total, err := s.bookRepo.List(ctx, offset, input.Limit, input.Search)
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{Books: books, Total: total}, nil
}

// Update updates a book and replaces its tag associations
func (s *BookService) Update(ctx context.Context, id uint, input *BookInput) (*models.Book, error) {
	book, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	publishedDate, err := parseDate(input.PublishedDate)
	if err != nil {
		return nil, err
	}

	authors, categories, err := s.resolveTags(ctx, input.Authors, input.Categories)
	if err != nil {
		return nil, err
	}

	book.Title = input.Title
	book.Description = input.Description
	book.Amount = input.Amount
	book.Publisher = input.Publisher
	book.PublishedDate = publishedDate
	if input.Image != "" {
		book.Image = input.Image
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	if err := s.bookRepo.ReplaceTags(ctx, book, authors, categories); err != nil {
		return nil, err
	}

	book.Authors = authors
	book.Categories = categories
	return book, nil
}

// Delete deletes a book
func (s *BookService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.bookRepo.Delete(ctx, id)
}

// ListCategories lists all category tags
func (s *BookService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.tagRepo.ListCategories(ctx)
}

// ListAuthors lists all author tags
func (s *BookService) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	return s.tagRepo.ListAuthors(ctx)
}

// resolveTags maps tag names to records, creating missing ones
func (s *BookService) resolveTags(ctx context.Context, authorNames, categoryNames []string) ([]models.Author, []models.Category, error) {
	authors := make([]models.Author, 0, len(authorNames))
	for _, name := range authorNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		author, err := s.tagRepo.FirstOrCreateAuthor(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		authors = append(authors, *author)
	}

	categories := make([]models.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		category, err := s.tagRepo.FirstOrCreateCategory(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		categories = append(categories, *category)
	}

	return authors, categories, nil
}

// parseDate parses an optional YYYY-MM-DD date
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}

package handlers

import (
	"errors"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/core/domain"
	"epersmip-backend/internal/core/services"
	"epersmip-backend/internal/pkg/pagination"
	"epersmip-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles book catalog endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// ListBooks lists the catalog
// @Summary List books
// @Description List books with pagination and title/author search
// @Tags Books
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Search by title or author"
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) ListBooks(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.bookService.List(c.Context(), &services.ListBooksInput{
		Page:   params.Page,
		Limit:  params.Limit,
		Search: c.Query("search"),
	})
	if err != nil {
		return response.InternalServerError(c, domain.CodeInternal, "Failed to list books")
	}

	books := make([]*models.BookResponse, len(result.Books))
	for i, b := range result.Books {
		books[i] = b.ToResponse()
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(books, params, result.Total))
}

// GetBook gets a book by ID
// @Summary Get book
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) GetBook(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid book ID")
	}

	book, err := h.bookService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, domain.CodeNotFound, "Book not found")
		}
		return response.InternalServerError(c, domain.CodeInternal, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// CreateBook creates a book (admin)
// @Summary Create book
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BookInput true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /books [post]
func (h *BookHandler) CreateBook(c *fiber.Ctx) error {
	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, domain.CodeValidation, "Invalid request body")
	}

	if input.Title == "" {
		return response.BadRequest(c, domain.CodeValidation, "Title is required")
	}
	if input.Amount < 0 {
		return response.BadRequest(c, domain.CodeValidation, "Amount cannot be negative")
	}

	book, err := h.bookService.Create(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			return response.BadRequest(c, domain.CodeValidation, "Published date must be YYYY-MM-DD")
		}
		return response.InternalServerError(c, domain.CodeInternal, "Failed to create book")
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// UpdateBook updates a book (admin)
// @Summary Update book
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body services.BookInput true "Book data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBook(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid book ID")
	}

	var input services.BookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, domain.CodeValidation, "Invalid request body")
	}

	if input.Title == "" {
		return response.BadRequest(c, domain.CodeValidation, "Title is required")
	}
	if input.Amount < 0 {
		return response.BadRequest(c, domain.CodeValidation, "Amount cannot be negative")
	}

	book, err := h.bookService.Update(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, domain.CodeNotFound, "Book not found")
		case errors.Is(err, services.ErrInvalidDate):
			return response.BadRequest(c, domain.CodeValidation, "Published date must be YYYY-MM-DD")
		default:
			return response.InternalServerError(c, domain.CodeInternal, "Failed to update book")
		}
	}

	return response.Success(c, "Book updated successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// DeleteBook deletes a book (admin)
// @Summary Delete book
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid book ID")
	}

	if err := h.bookService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, domain.CodeNotFound, "Book not found")
		}
		return response.InternalServerError(c, domain.CodeInternal, "Failed to delete book")
	}

	return response.Success(c, "Book deleted successfully", nil)
}

// ListCategories lists all categories
// @Summary List categories
// @Tags Books
// @Produce json
// @Success 200 {object} response.Response
// @Router /categories [get]
func (h *BookHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.bookService.ListCategories(c.Context())
	if err != nil {
		return response.InternalServerError(c, domain.CodeInternal, "Failed to list categories")
	}

	return response.Success(c, "Categories retrieved successfully", fiber.Map{
		"categories": categories,
	})
}

// ListAuthors lists all authors
// @Summary List authors
// @Tags Books
// @Produce json
// @Success 200 {object} response.Response
// @Router /authors [get]
func (h *BookHandler) ListAuthors(c *fiber.Ctx) error {
	authors, err := h.bookService.ListAuthors(c.Context())
	if err != nil {
		return response.InternalServerError(c, domain.CodeInternal, "Failed to list authors")
	}

	return response.Success(c, "Authors retrieved successfully", fiber.Map{
		"authors": authors,
	})
}

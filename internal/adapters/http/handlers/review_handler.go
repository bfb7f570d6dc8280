package handlers

import (
	"errors"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/core/domain"
	"epersmip-backend/internal/core/services"
	"epersmip-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles book review endpoints
type ReviewHandler struct {
	reviewService *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ListReviews lists all reviews of a book
// @Summary List book reviews
// @Tags Reviews
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id}/reviews [get]
func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid book ID")
	}

	reviews, err := h.reviewService.ListForBook(c.Context(), uint(bookID))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, domain.CodeNotFound, "Book not found")
		}
		return response.InternalServerError(c, domain.CodeInternal, "Failed to list reviews")
	}

	out := make([]*models.ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = r.ToResponse()
	}

	return response.Success(c, "Reviews retrieved successfully", fiber.Map{
		"reviews": out,
	})
}

// CreateReview creates a review for a book
// @Summary Create review
// @Description Write a review; requires a returned borrow of the book
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body services.ReviewInput true "Review data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid book ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, domain.CodeUnauthorized, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	var input services.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, domain.CodeValidation, "Invalid request body")
	}

	review, err := h.reviewService.Create(c.Context(), userID, role, uint(bookID), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidScore):
			return response.BadRequest(c, domain.CodeValidation, "Review score must be between 1 and 5")
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, domain.CodeNotFound, "Book not found")
		case errors.Is(err, services.ErrReviewAdmin):
			return response.Forbidden(c, domain.CodeReviewAdmin, "Admins cannot write reviews")
		case errors.Is(err, services.ErrReviewExists):
			return response.Conflict(c, domain.CodeReviewExists, "You already reviewed this book")
		case errors.Is(err, services.ErrReviewNotReturned):
			return response.Forbidden(c, domain.CodeReviewNotReturned, "You must return this book before reviewing it")
		default:
			return response.InternalServerError(c, domain.CodeInternal, "Failed to create review")
		}
	}

	return response.Created(c, "Review created successfully", fiber.Map{
		"review": review.ToResponse(),
	})
}

// ReviewEligibility runs the review precondition check without writing
// @Summary Check review eligibility
// @Description Report whether the current user may review this book, with a reason code when not
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id}/review-eligibility [get]
func (h *ReviewHandler) ReviewEligibility(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid book ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, domain.CodeUnauthorized, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	decision, err := h.reviewService.Eligibility(c.Context(), userID, role, uint(bookID))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, domain.CodeNotFound, "Book not found")
		}
		return response.InternalServerError(c, domain.CodeInternal, "Failed to check eligibility")
	}

	return response.Success(c, "Eligibility checked", decision)
}

// UpdateReview updates the caller's own review
// @Summary Update review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param body body services.ReviewInput true "Review data"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	reviewID, err := c.ParamsInt("id")
	if err != nil || reviewID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid review ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, domain.CodeUnauthorized, "Unauthorized")
	}

	var input services.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, domain.CodeValidation, "Invalid request body")
	}

	review, err := h.reviewService.Update(c.Context(), uint(reviewID), userID, &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidScore):
			return response.BadRequest(c, domain.CodeValidation, "Review score must be between 1 and 5")
		case errors.Is(err, services.ErrReviewNotFound):
			return response.NotFound(c, domain.CodeNotFound, "Review not found")
		case errors.Is(err, services.ErrNotReviewOwner):
			return response.Forbidden(c, domain.CodeNotOwner, "This review belongs to another user")
		default:
			return response.InternalServerError(c, domain.CodeInternal, "Failed to update review")
		}
	}

	return response.Success(c, "Review updated successfully", fiber.Map{
		"review": review.ToResponse(),
	})
}

// DeleteReview deletes the caller's own review
// @Summary Delete review
// @Description Reviews can only be deleted by the user who wrote them
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	reviewID, err := c.ParamsInt("id")
	if err != nil || reviewID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid review ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, domain.CodeUnauthorized, "Unauthorized")
	}

	if err := h.reviewService.Delete(c.Context(), uint(reviewID), userID); err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			return response.NotFound(c, domain.CodeNotFound, "Review not found")
		case errors.Is(err, services.ErrNotReviewOwner):
			return response.Forbidden(c, domain.CodeNotOwner, "This review belongs to another user")
		default:
			return response.InternalServerError(c, domain.CodeInternal, "Failed to delete review")
		}
	}

	return response.Success(c, "Review deleted successfully", nil)
}

package handlers

import (
	"errors"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/core/domain"
	"epersmip-backend/internal/core/services"
	"epersmip-backend/internal/core/workflow"
	"epersmip-backend/internal/pkg/pagination"
	"epersmip-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BorrowHandler handles borrow workflow endpoints
type BorrowHandler struct {
	borrowService *services.BorrowService
}

// NewBorrowHandler creates a new borrow handler
func NewBorrowHandler(borrowService *services.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowService: borrowService}
}

// Borrow creates a borrow request for a book
// @Summary Borrow a book
// @Description Open a borrow request in status menunggu and reserve one copy
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id}/borrow [post]
func (h *BorrowHandler) Borrow(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid book ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, domain.CodeUnauthorized, "Unauthorized")
	}

	borrow, err := h.borrowService.Borrow(c.Context(), userID, uint(bookID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBorrowAdmin):
			return response.Forbidden(c, domain.CodeBorrowAdmin, "Admins cannot borrow books")
		case errors.Is(err, services.ErrUserInactive):
			return response.Forbidden(c, domain.CodeUserInactive, "User account is inactive")
		case errors.Is(err, services.ErrBorrowPendingExists):
			return response.Conflict(c, domain.CodeBorrowPendingExists, "You already have a pending borrow request")
		case errors.Is(err, services.ErrBorrowActiveExists):
			return response.Conflict(c, domain.CodeBorrowActiveExists, "You already have an active borrow")
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, domain.CodeNotFound, "Book not found")
		case errors.Is(err, services.ErrBookOutOfStock):
			return response.Conflict(c, domain.CodeBookOutOfStock, "Book is out of stock")
		default:
			return response.InternalServerError(c, domain.CodeInternal, "Failed to create borrow")
		}
	}

	return response.Created(c, "Borrow request created", fiber.Map{
		"borrow": borrow.ToResponse(),
	})
}

// BorrowEligibility runs the borrow precondition check without borrowing
// @Summary Check borrow eligibility
// @Description Report whether the current user may borrow this book, with a reason code when not
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id}/borrow-eligibility [get]
func (h *BorrowHandler) BorrowEligibility(c *fiber.Ctx) error {
	bookID, err := c.ParamsInt("id")
	if err != nil || bookID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid book ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, domain.CodeUnauthorized, "Unauthorized")
	}

	decision, err := h.borrowService.BorrowEligibility(c.Context(), userID, uint(bookID))
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, domain.CodeNotFound, "Book not found")
		}
		return response.InternalServerError(c, domain.CodeInternal, "Failed to check eligibility")
	}

	return response.Success(c, "Eligibility checked", decision)
}

// ListMy lists the current user's borrows
// @Summary List my borrows
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /borrows/my [get]
func (h *BorrowHandler) ListMy(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, domain.CodeUnauthorized, "Unauthorized")
	}

	borrows, err := h.borrowService.ListMy(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, domain.CodeInternal, "Failed to list borrows")
	}

	return response.Success(c, "Borrows retrieved successfully", fiber.Map{
		"borrows": toBorrowResponses(borrows),
	})
}

// Return performs the borrower's self-service return
// @Summary Return a borrowed book
// @Description Move a borrow from dipinjam to dikembalikan and restore stock
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrows/{id}/return [put]
func (h *BorrowHandler) Return(c *fiber.Ctx) error {
	borrowID, err := c.ParamsInt("id")
	if err != nil || borrowID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid borrow ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, domain.CodeUnauthorized, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	borrow, err := h.borrowService.Return(c.Context(), uint(borrowID), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBorrowNotFound):
			return response.NotFound(c, domain.CodeNotFound, "Borrow not found")
		case errors.Is(err, services.ErrNotBorrower):
			return response.Forbidden(c, domain.CodeForbidden, "This borrow belongs to another user")
		case errors.Is(err, services.ErrBorrowFinal):
			return response.Conflict(c, domain.CodeBorrowFinal, "Borrow is already in a final status")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.Conflict(c, domain.CodeInvalidTransition, "Borrow is not in a returnable status")
		default:
			return response.InternalServerError(c, domain.CodeInternal, "Failed to return book")
		}
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"borrow": borrow.ToResponse(),
	})
}

// ListAll lists all borrows (admin)
// @Summary List all borrows
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status (menunggu, dipinjam, dikembalikan, ditolak)"
// @Success 200 {object} response.Response
// @Router /borrows [get]
func (h *BorrowHandler) ListAll(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.borrowService.ListAll(c.Context(), &services.ListAllInput{
		Page:   params.Page,
		Limit:  params.Limit,
		Status: workflow.Status(c.Query("status")),
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return response.BadRequest(c, domain.CodeValidation, "Unknown borrow status")
		}
		return response.InternalServerError(c, domain.CodeInternal, "Failed to list borrows")
	}

	return response.Success(c, "Borrows retrieved successfully",
		pagination.NewResponse(toBorrowResponses(result.Borrows), params, result.Total))
}

// AdminUpdate moves a borrow to a new status (admin)
// @Summary Update borrow status
// @Description Approve, reject or close a borrow; stock is restored on ditolak and dikembalikan
// @Tags Borrows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow ID"
// @Param body body services.AdminUpdateInput true "Target status and optional return date"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrows/{id} [put]
func (h *BorrowHandler) AdminUpdate(c *fiber.Ctx) error {
	borrowID, err := c.ParamsInt("id")
	if err != nil || borrowID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid borrow ID")
	}

	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, domain.CodeUnauthorized, "Unauthorized")
	}

	var input services.AdminUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, domain.CodeValidation, "Invalid request body")
	}

	borrow, err := h.borrowService.AdminUpdate(c.Context(), uint(borrowID), &input, adminID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return response.BadRequest(c, domain.CodeValidation, "Unknown borrow status")
		case errors.Is(err, services.ErrInvalidDate):
			return response.BadRequest(c, domain.CodeValidation, "Return date must be YYYY-MM-DD")
		case errors.Is(err, services.ErrBorrowNotFound):
			return response.NotFound(c, domain.CodeNotFound, "Borrow not found")
		case errors.Is(err, services.ErrBorrowFinal):
			return response.Conflict(c, domain.CodeBorrowFinal, "Borrow is already in a final status")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.Conflict(c, domain.CodeInvalidTransition, "Status change is not allowed")
		default:
			return response.InternalServerError(c, domain.CodeInternal, "Failed to update borrow")
		}
	}

	return response.Success(c, "Borrow updated successfully", fiber.Map{
		"borrow": borrow.ToResponse(),
	})
}

// History returns the audit trail of a borrow (admin)
// @Summary Get borrow history
// @Tags Borrows
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrow ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /borrows/{id}/history [get]
func (h *BorrowHandler) History(c *fiber.Ctx) error {
	borrowID, err := c.ParamsInt("id")
	if err != nil || borrowID < 1 {
		return response.BadRequest(c, domain.CodeValidation, "Invalid borrow ID")
	}

	logs, err := h.borrowService.History(c.Context(), uint(borrowID))
	if err != nil {
		if errors.Is(err, services.ErrBorrowNotFound) {
			return response.NotFound(c, domain.CodeNotFound, "Borrow not found")
		}
		return response.InternalServerError(c, domain.CodeInternal, "Failed to get borrow history")
	}

	return response.Success(c, "Borrow history retrieved successfully", fiber.Map{
		"history": logs,
	})
}

func toBorrowResponses(borrows []*models.Borrow) []*models.BorrowResponse {
	out := make([]*models.BorrowResponse, len(borrows))
	for i, b := range borrows {
		out[i] = b.ToResponse()
	}
	return out
}

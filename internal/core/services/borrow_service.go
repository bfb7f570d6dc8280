package services

import (
	"context"
	"errors"
	"time"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/adapters/persistence/repositories"
	"epersmip-backend/internal/core/domain"
	"epersmip-backend/internal/core/workflow"

	"gorm.io/gorm"
)

// Borrow service errors
var (
	ErrBorrowNotFound      = domain.ErrBorrowNotFound
	ErrBookOutOfStock      = domain.ErrBookOutOfStock
	ErrBorrowActiveExists  = domain.ErrBorrowActiveExists
	ErrBorrowPendingExists = domain.ErrBorrowPendingExists
	ErrBorrowFinal         = domain.ErrBorrowFinal
	ErrInvalidTransition   = domain.ErrInvalidTransition
	ErrBorrowAdmin         = domain.ErrBorrowAdmin
	ErrNotBorrower         = errors.New("borrow belongs to another user")
	ErrInvalidStatus       = errors.New("unknown borrow status")
)

// BorrowService drives the borrow lifecycle. Every mutation is validated
// against the workflow transition table and appended to the audit log.
type BorrowService struct {
	borrowRepo repositories.BorrowRepository
	logRepo    repositories.BorrowLogRepository
	bookRepo   repositories.BookRepository
	userRepo   repositories.UserRepository
}

// NewBorrowService creates a new borrow service
func NewBorrowService(
	borrowRepo repositories.BorrowRepository,
	logRepo repositories.BorrowLogRepository,
	bookRepo repositories.BookRepository,
	userRepo repositories.UserRepository,
) *BorrowService {
	return &BorrowService{
		borrowRepo: borrowRepo,
		logRepo:    logRepo,
		bookRepo:   bookRepo,
		userRepo:   userRepo,
	}
}

// Borrow opens a new borrow in status menunggu and reserves one copy.
func (s *BorrowService) Borrow(ctx context.Context, userID, bookID uint) (*models.Borrow, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	if user.Role == domain.RoleAdmin {
		return nil, ErrBorrowAdmin
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// One non-terminal borrow per user
	open, err := s.borrowRepo.GetOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		if open.Status == workflow.StatusMenunggu {
			return nil, ErrBorrowPendingExists
		}
		return nil, ErrBorrowActiveExists
	}

	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	// Atomic decrement doubles as the out-of-stock check
	reserved, err := s.bookRepo.ReserveStock(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, ErrBookOutOfStock
	}

	borrow := &models.Borrow{
		UserID:     userID,
		BookID:     bookID,
		Status:     workflow.StatusMenunggu,
		BorrowDate: time.Now(),
	}
	if err := s.borrowRepo.Create(ctx, borrow); err != nil {
		// Hand the reserved copy back on failure
		s.bookRepo.ReleaseStock(ctx, bookID)
		return nil, err
	}

	s.appendLog(ctx, borrow.ID, nil, workflow.StatusMenunggu, userID, "pengajuan peminjaman")

	return borrow, nil
}

// Return performs the borrower's self-service return
// (dipinjam → dikembalikan).
func (s *BorrowService) Return(ctx context.Context, borrowID, actorID uint, actorRole string) (*models.Borrow, error) {
	borrow, err := s.getBorrow(ctx, borrowID)
	if err != nil {
		return nil, err
	}

	if actorRole != domain.RoleAdmin && borrow.UserID != actorID {
		return nil, ErrNotBorrower
	}

	return s.transition(ctx, borrow, workflow.StatusDikembalikan, nil, actorID, "pengembalian buku")
}

// AdminUpdateInput carries the target state of the generic admin update.
// Approve, reject and return all go through this single call.
type AdminUpdateInput struct {
	Status     workflow.Status `json:"status"`
	ReturnDate string          `json:"return_date,omitempty"`
	Remark     string          `json:"remark,omitempty"`
}

// AdminUpdate moves a borrow to the requested status
func (s *BorrowService) AdminUpdate(ctx context.Context, borrowID uint, input *AdminUpdateInput, adminID uint) (*models.Borrow, error) {
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	borrow, err := s.getBorrow(ctx, borrowID)
	if err != nil {
		return nil, err
	}

	var returnDate *time.Time
	if input.ReturnDate != "" {
		t, err := time.Parse("2006-01-02", input.ReturnDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		returnDate = &t
	}

	remark := input.Remark
	if remark == "" {
		remark = "perubahan status oleh admin"
	}

	return s.transition(ctx, borrow, input.Status, returnDate, adminID, remark)
}

// transition applies a validated status change, adjusts stock and logs it
func (s *BorrowService) transition(ctx context.Context, borrow *models.Borrow, to workflow.Status, returnDate *time.Time, actorID uint, remark string) (*models.Borrow, error) {
	from := borrow.Status

	if from.Terminal() {
		return nil, ErrBorrowFinal
	}
	if !workflow.CanTransition(from, to) {
		return nil, ErrInvalidTransition
	}

	borrow.Status = to
	if to == workflow.StatusDikembalikan {
		if returnDate == nil {
			now := time.Now()
			returnDate = &now
		}
		borrow.ReturnDate = returnDate
	}

	if err := s.borrowRepo.Update(ctx, borrow); err != nil {
		return nil, err
	}

	if workflow.RestoresStock(to) {
		if err := s.bookRepo.ReleaseStock(ctx, borrow.BookID); err != nil {
			return nil, err
		}
	}

	s.appendLog(ctx, borrow.ID, &from, to, actorID, remark)

	return borrow, nil
}

// GetByID gets a borrow by ID
func (s *BorrowService) GetByID(ctx context.Context, id uint) (*models.Borrow, error) {
	return s.getBorrow(ctx, id)
}

// ListMy lists all borrows of the acting user
func (s *BorrowService) ListMy(ctx context.Context, userID uint) ([]*models.Borrow, error) {
	return s.borrowRepo.ListByUser(ctx, userID)
}

// ListAllInput represents admin borrow listing input
type ListAllInput struct {
	Page   int
	Limit  int
	Status workflow.Status
}

// ListAllOutput represents admin borrow listing output
type ListAllOutput struct {
	Borrows []*models.Borrow `json:"borrows"`
	Total   int64            `json:"total"`
}

// ListAll lists borrows for admins, optionally filtered by status
func (s *BorrowService) ListAll(ctx context.Context, input *ListAllInput) (*ListAllOutput, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
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
	borrows, total, err := s.borrowRepo.List(ctx, offset, input.Limit, input.Status)
	if err != nil {
		return nil, err
	}

	return &ListAllOutput{Borrows: borrows, Total: total}, nil
}

// History gets the audit trail of a borrow
func (s *BorrowService) History(ctx context.Context, borrowID uint) ([]*models.BorrowLog, error) {
	if _, err := s.getBorrow(ctx, borrowID); err != nil {
		return nil, err
	}
	return s.logRepo.ListByBorrow(ctx, borrowID)
}

// BorrowEligibility runs the typed precondition check for (user, book)
// without mutating anything.
func (s *BorrowService) BorrowEligibility(ctx context.Context, userID, bookID uint) (*workflow.Decision, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	open, err := s.borrowRepo.GetOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var openStatus *workflow.Status
	if open != nil {
		openStatus = &open.Status
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	decision := workflow.CanBorrow(user.Role, user.IsActive, openStatus, book.Amount)
	return &decision, nil
}

func (s *BorrowService) getBorrow(ctx context.Context, id uint) (*models.Borrow, error) {
	borrow, err := s.borrowRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorrowNotFound
		}
		return nil, err
	}
	return borrow, nil
}

func (s *BorrowService) appendLog(ctx context.Context, borrowID uint, from *workflow.Status, to workflow.Status, actorID uint, remark string) {
	s.logRepo.Create(ctx, &models.BorrowLog{
		BorrowID:    borrowID,
		FromStatus:  from,
		ToStatus:    to,
		PerformedBy: actorID,
		Remark:      remark,
	})
}

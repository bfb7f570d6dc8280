package services

import (
	"context"
	"errors"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/adapters/persistence/repositories"
	"epersmip-backend/internal/core/domain"
	"epersmip-backend/internal/core/workflow"

	"gorm.io/gorm"
)

// Review service errors
var (
	ErrReviewNotFound    = domain.ErrReviewNotFound
	ErrReviewExists      = domain.ErrReviewExists
	ErrReviewNotReturned = domain.ErrReviewNotReturned
	ErrReviewAdmin       = domain.ErrReviewAdmin
	ErrNotReviewOwner    = domain.ErrNotReviewOwner
	ErrInvalidScore      = errors.New("review score must be between 1 and 5")
)

// ReviewService handles book reviews. Writing a review is gated on the
// reviewer having at least one returned borrow of the book.
type ReviewService struct {
	reviewRepo repositories.ReviewRepository
	borrowRepo repositories.BorrowRepository
	bookRepo   repositories.BookRepository
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	borrowRepo repositories.BorrowRepository,
	bookRepo repositories.BookRepository,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		borrowRepo: borrowRepo,
		bookRepo:   bookRepo,
	}
}

// ReviewInput represents review create/update input
type ReviewInput struct {
	ReviewScore int    `json:"review_score"`
	ReviewText  string `json:"review_text"`
}

// ListForBook lists all reviews of a book, newest first
func (s *ReviewService) ListForBook(ctx context.Context, bookID uint) ([]*models.Review, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return s.reviewRepo.ListByBook(ctx, bookID)
}

// Create creates a review after running the eligibility gate
func (s *ReviewService) Create(ctx context.Context, userID uint, role string, bookID uint, input *ReviewInput) (*models.Review, error) {
	if input.ReviewScore < 1 || input.ReviewScore > 5 {
		return nil, ErrInvalidScore
	}

	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	decision, err := s.eligibility(ctx, userID, role, bookID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, reasonToError(decision.Reason)
	}

	review := &models.Review{
		UserID:      userID,
		BookID:      bookID,
		ReviewScore: input.ReviewScore,
		ReviewText:  input.ReviewText,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return s.reviewRepo.GetByID(ctx, review.ID)
}

// Update updates the caller's own review
func (s *ReviewService) Update(ctx context.Context, reviewID, userID uint, input *ReviewInput) (*models.Review, error) {
	if input.ReviewScore < 1 || input.ReviewScore > 5 {
		return nil, ErrInvalidScore
	}

	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrNotReviewOwner
	}

	review.ReviewScore = input.ReviewScore
	review.ReviewText = input.ReviewText
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// Delete deletes the caller's own review
func (s *ReviewService) Delete(ctx context.Context, reviewID, userID uint) error {
	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return ErrNotReviewOwner
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}

// Eligibility runs the typed review precondition check without writing
func (s *ReviewService) Eligibility(ctx context.Context, userID uint, role string, bookID uint) (*workflow.Decision, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return s.eligibility(ctx, userID, role, bookID)
}

func (s *ReviewService) eligibility(ctx context.Context, userID uint, role string, bookID uint) (*workflow.Decision, error) {
	borrows, err := s.borrowRepo.ListByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	history := make([]workflow.Status, 0, len(borrows))
	for _, b := range borrows {
		history = append(history, b.Status)
	}

	existing, err := s.reviewRepo.GetByUserAndBook(ctx, userID, bookID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	decision := workflow.CanReview(role, history, existing != nil)
	return &decision, nil
}

func (s *ReviewService) getReview(ctx context.Context, id uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func reasonToError(reason string) error {
	switch reason {
	case domain.CodeReviewAdmin:
		return ErrReviewAdmin
	case domain.CodeReviewExists:
		return ErrReviewExists
	case domain.CodeReviewNotReturned:
		return ErrReviewNotReturned
	default:
		return domain.ErrForbidden
	}
}

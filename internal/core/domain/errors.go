package domain

import "errors"

// Roles stored on users.role
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Error codes returned in the API envelope. Clients map these to localized
// messages instead of inspecting error prose.
const (
	CodeValidation          = "VALIDATION"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicate           = "DUPLICATE"
	CodeInternal            = "INTERNAL"
	CodeUserInactive        = "USER_INACTIVE"
	CodeLastAdmin           = "LAST_ADMIN"
	CodeBookOutOfStock      = "BOOK_OUT_OF_STOCK"
	CodeBorrowActiveExists  = "BORROW_ACTIVE_EXISTS"
	CodeBorrowPendingExists = "BORROW_PENDING_EXISTS"
	CodeBorrowFinal         = "BORROW_FINAL"
	CodeBorrowAdmin         = "BORROW_ADMIN_FORBIDDEN"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeReviewExists        = "REVIEW_EXISTS"
	CodeReviewNotReturned   = "REVIEW_NOT_RETURNED"
	CodeReviewAdmin         = "REVIEW_ADMIN_FORBIDDEN"
	CodeNotOwner            = "NOT_OWNER"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrNimTaken     = errors.New("nim already registered")
	ErrUserInactive = errors.New("user account is inactive")
	ErrLastAdmin    = errors.New("cannot remove the last admin")
)

// Borrow errors
var (
	ErrBookNotFound        = errors.New("book not found")
	ErrBookOutOfStock      = errors.New("book is out of stock")
	ErrBorrowNotFound      = errors.New("borrow not found")
	ErrBorrowActiveExists  = errors.New("user already has an active loan")
	ErrBorrowPendingExists = errors.New("user already has a borrow awaiting approval")
	ErrBorrowFinal         = errors.New("borrow is in a terminal state")
	ErrBorrowAdmin         = errors.New("admins cannot borrow books")
	ErrInvalidTransition   = errors.New("invalid borrow status transition")
)

// Review errors
var (
	ErrReviewNotFound    = errors.New("review not found")
	ErrReviewExists      = errors.New("book already reviewed by this user")
	ErrReviewNotReturned = errors.New("book must be returned before reviewing")
	ErrReviewAdmin       = errors.New("admins cannot write reviews")
	ErrNotReviewOwner    = errors.New("review belongs to another user")
)

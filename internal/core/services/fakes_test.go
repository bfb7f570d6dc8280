package services

import (
	"context"
	"strings"
	"time"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/core/workflow"

	"gorm.io/gorm"
)

// In-memory repository fakes used by the service tests.

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int, search string) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range r.users {
		if search == "" || strings.Contains(u.FullName, search) || strings.Contains(u.Email, search) {
			out = append(out, u)
		}
	}
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByNim(ctx context.Context, nim string) (bool, error) {
	for _, u := range r.users {
		if u.Nim != nil && *u.Nim == nim {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == "admin" {
			n++
		}
	}
	return n, nil
}

type fakeBookRepo struct {
	books  map[uint]*models.Book
	nextID uint
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: map[uint]*models.Book{}, nextID: 1}
}

func (r *fakeBookRepo) add(b *models.Book) *models.Book {
	if b.ID == 0 {
		b.ID = r.nextID
		r.nextID++
	}
	r.books[b.ID] = b
	return b
}

func (r *fakeBookRepo) Create(ctx context.Context, book *models.Book) error {
	r.add(book)
	return nil
}

func (r *fakeBookRepo) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *fakeBookRepo) Update(ctx context.Context, book *models.Book) error {
	if _, ok := r.books[book.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.books[book.ID] = book
	return nil
}

func (r *fakeBookRepo) ReplaceTags(ctx context.Context, book *models.Book, authors []models.Author, categories []models.Category) error {
	book.Authors = authors
	book.Categories = categories
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) List(ctx context.Context, offset, limit int, search string) ([]*models.Book, int64, error) {
	var out []*models.Book
	for _, b := range r.books {
		if search == "" || strings.Contains(b.Title, search) {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookRepo) ReserveStock(ctx context.Context, id uint) (bool, error) {
	b, ok := r.books[id]
	if !ok || b.Amount <= 0 {
		return false, nil
	}
	b.Amount--
	return true, nil
}

func (r *fakeBookRepo) ReleaseStock(ctx context.Context, id uint) error {
	b, ok := r.books[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Amount++
	return nil
}

type fakeBorrowRepo struct {
	borrows map[uint]*models.Borrow
	nextID  uint
}

func newFakeBorrowRepo() *fakeBorrowRepo {
	return &fakeBorrowRepo{borrows: map[uint]*models.Borrow{}, nextID: 1}
}

func (r *fakeBorrowRepo) Create(ctx context.Context, borrow *models.Borrow) error {
	borrow.ID = r.nextID
	r.nextID++
	r.borrows[borrow.ID] = borrow
	return nil
}

func (r *fakeBorrowRepo) GetByID(ctx context.Context, id uint) (*models.Borrow, error) {
	b, ok := r.borrows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *fakeBorrowRepo) Update(ctx context.Context, borrow *models.Borrow) error {
	if _, ok := r.borrows[borrow.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.borrows[borrow.ID] = borrow
	return nil
}

func (r *fakeBorrowRepo) List(ctx context.Context, offset, limit int, status workflow.Status) ([]*models.Borrow, int64, error) {
	var out []*models.Borrow
	for _, b := range r.borrows {
		if status == "" || b.Status == status {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBorrowRepo) ListByUser(ctx context.Context, userID uint) ([]*models.Borrow, error) {
	var out []*models.Borrow
	for _, b := range r.borrows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBorrowRepo) ListByUserAndBook(ctx context.Context, userID, bookID uint) ([]*models.Borrow, error) {
	var out []*models.Borrow
	for _, b := range r.borrows {
		if b.UserID == userID && b.BookID == bookID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBorrowRepo) GetOpenByUser(ctx context.Context, userID uint) (*models.Borrow, error) {
	for _, b := range r.borrows {
		if b.UserID == userID && !b.Status.Terminal() {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBorrowRepo) ListOverdue(ctx context.Context, since time.Time) ([]*models.Borrow, error) {
	var out []*models.Borrow
	for _, b := range r.borrows {
		if b.Status == "dipinjam" && b.BorrowDate.Before(since) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeBorrowLogRepo struct {
	logs   []*models.BorrowLog
	nextID uint
}

func newFakeBorrowLogRepo() *fakeBorrowLogRepo {
	return &fakeBorrowLogRepo{nextID: 1}
}

func (r *fakeBorrowLogRepo) Create(ctx context.Context, log *models.BorrowLog) error {
	log.ID = r.nextID
	r.nextID++
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeBorrowLogRepo) ListByBorrow(ctx context.Context, borrowID uint) ([]*models.BorrowLog, error) {
	var out []*models.BorrowLog
	for _, l := range r.logs {
		if l.BorrowID == borrowID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeReviewRepo struct {
	reviews map[uint]*models.Review
	nextID  uint
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[uint]*models.Review{}, nextID: 1}
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	review.ID = r.nextID
	r.nextID++
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rv, nil
}

func (r *fakeReviewRepo) GetByUserAndBook(ctx context.Context, userID, bookID uint) (*models.Review, error) {
	for _, rv := range r.reviews {
		if rv.UserID == userID && rv.BookID == bookID {
			return rv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReviewRepo) Update(ctx context.Context, review *models.Review) error {
	if _, ok := r.reviews[review.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id uint) error {
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) ListByBook(ctx context.Context, bookID uint) ([]*models.Review, error) {
	var out []*models.Review
	for _, rv := range r.reviews {
		if rv.BookID == bookID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type fakeRefreshTokenRepo struct {
	tokens map[uint]*models.RefreshToken
	nextID uint
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[uint]*models.RefreshToken), nextID: 1}
}

func (r *fakeRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	token.ID = r.nextID
	r.nextID++
	r.tokens[token.ID] = token
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	for _, tok := range r.tokens {
		if tok.TokenHash == tokenHash {
			return tok, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Revoke(ctx context.Context, id uint) error {
	tok, ok := r.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	tok.RevokedAt = &now
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	for _, tok := range r.tokens {
		if tok.TokenHash == tokenHash {
			now := time.Now()
			tok.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(ctx context.Context, userID uint) error {
	for _, tok := range r.tokens {
		if tok.UserID == userID {
			now := time.Now()
			tok.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	for id, tok := range r.tokens {
		if tok.IsExpired() {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

type fakeTagRepo struct {
	authors    map[string]*models.Author
	categories map[string]*models.Category
	nextID     uint
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{
		authors:    map[string]*models.Author{},
		categories: map[string]*models.Category{},
		nextID:     1,
	}
}

func (r *fakeTagRepo) FirstOrCreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	if a, ok := r.authors[name]; ok {
		return a, nil
	}
	a := &models.Author{ID: r.nextID, Name: name}
	r.nextID++
	r.authors[name] = a
	return a, nil
}

func (r *fakeTagRepo) FirstOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	if c, ok := r.categories[name]; ok {
		return c, nil
	}
	c := &models.Category{ID: r.nextID, Name: name}
	r.nextID++
	r.categories[name] = c
	return c, nil
}

func (r *fakeTagRepo) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	out := make([]*models.Author, 0, len(r.authors))
	for _, a := range r.authors {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeTagRepo) ListCategories(ctx context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

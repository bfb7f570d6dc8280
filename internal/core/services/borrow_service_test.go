package services

import (
	"context"
	"testing"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/core/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type borrowFixture struct {
	svc     *BorrowService
	users   *fakeUserRepo
	books   *fakeBookRepo
	borrows *fakeBorrowRepo
	logs    *fakeBorrowLogRepo
}

func newBorrowFixture() *borrowFixture {
	f := &borrowFixture{
		users:   newFakeUserRepo(),
		books:   newFakeBookRepo(),
		borrows: newFakeBorrowRepo(),
		logs:    newFakeBorrowLogRepo(),
	}
	f.svc = NewBorrowService(f.borrows, f.logs, f.books, f.users)
	return f
}

func (f *borrowFixture) seedUser(active bool) *models.User {
	return f.users.add(&models.User{FullName: "Budi Santoso", Email: "budi@student.unhas.ac.id", Role: "user", IsActive: active})
}

func (f *borrowFixture) seedBook(amount int) *models.Book {
	return f.books.add(&models.Book{Title: "Kalkulus Lanjut", Amount: amount})
}

func TestBorrowService_Borrow(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending borrow and reserves one copy", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(2)

		borrow, err := f.svc.Borrow(ctx, user.ID, book.ID)
		require.NoError(t, err)

		assert.Equal(t, workflow.StatusMenunggu, borrow.Status)
		assert.False(t, borrow.BorrowDate.IsZero())
		assert.Nil(t, borrow.ReturnDate)
		assert.Equal(t, 1, book.Amount)

		logs, _ := f.logs.ListByBorrow(ctx, borrow.ID)
		require.Len(t, logs, 1)
		assert.Nil(t, logs[0].FromStatus)
		assert.Equal(t, workflow.StatusMenunggu, logs[0].ToStatus)
	})

	t.Run("rejects admin accounts", func(t *testing.T) {
		f := newBorrowFixture()
		admin := f.users.add(&models.User{FullName: "Admin", Role: "admin", IsActive: true})
		book := f.seedBook(2)

		_, err := f.svc.Borrow(ctx, admin.ID, book.ID)
		assert.ErrorIs(t, err, ErrBorrowAdmin)
		assert.Equal(t, 2, book.Amount)
	})

	t.Run("rejects inactive user", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(false)
		book := f.seedBook(2)

		_, err := f.svc.Borrow(ctx, user.ID, book.ID)
		assert.ErrorIs(t, err, ErrUserInactive)
		assert.Equal(t, 2, book.Amount)
	})

	t.Run("rejects second request while one is pending", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(5)

		_, err := f.svc.Borrow(ctx, user.ID, book.ID)
		require.NoError(t, err)

		_, err = f.svc.Borrow(ctx, user.ID, book.ID)
		assert.ErrorIs(t, err, ErrBorrowPendingExists)
		assert.Equal(t, 4, book.Amount)
	})

	t.Run("rejects second request while a loan is active", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(5)
		admin := f.users.add(&models.User{FullName: "Admin", Role: "admin", IsActive: true})

		borrow, err := f.svc.Borrow(ctx, user.ID, book.ID)
		require.NoError(t, err)

		_, err = f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: workflow.StatusDipinjam}, admin.ID)
		require.NoError(t, err)

		_, err = f.svc.Borrow(ctx, user.ID, book.ID)
		assert.ErrorIs(t, err, ErrBorrowActiveExists)
	})

	t.Run("rejects when out of stock", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(0)

		_, err := f.svc.Borrow(ctx, user.ID, book.ID)
		assert.ErrorIs(t, err, ErrBookOutOfStock)
	})

	t.Run("rejects unknown book", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(true)

		_, err := f.svc.Borrow(ctx, user.ID, 99)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestBorrowService_AdminUpdate(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*borrowFixture, *models.Borrow, *models.Book, uint) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(1)
		admin := f.users.add(&models.User{FullName: "Admin", Role: "admin", IsActive: true})

		borrow, err := f.svc.Borrow(ctx, user.ID, book.ID)
		require.NoError(t, err)
		require.Equal(t, 0, book.Amount)
		return f, borrow, book, admin.ID
	}

	t.Run("approve moves menunggu to dipinjam without touching stock", func(t *testing.T) {
		f, borrow, book, adminID := setup(t)

		updated, err := f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: workflow.StatusDipinjam}, adminID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusDipinjam, updated.Status)
		assert.Equal(t, 0, book.Amount)

		logs, _ := f.logs.ListByBorrow(ctx, borrow.ID)
		require.Len(t, logs, 2)
		assert.Equal(t, workflow.StatusDipinjam, logs[1].ToStatus)
	})

	t.Run("reject restores the reserved copy", func(t *testing.T) {
		f, borrow, book, adminID := setup(t)

		updated, err := f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: workflow.StatusDitolak}, adminID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusDitolak, updated.Status)
		assert.Equal(t, 1, book.Amount)
	})

	t.Run("close with explicit return date", func(t *testing.T) {
		f, borrow, book, adminID := setup(t)

		_, err := f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: workflow.StatusDipinjam}, adminID)
		require.NoError(t, err)

		updated, err := f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{
			Status:     workflow.StatusDikembalikan,
			ReturnDate: "2025-01-10",
		}, adminID)
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusDikembalikan, updated.Status)
		require.NotNil(t, updated.ReturnDate)
		assert.Equal(t, "2025-01-10", updated.ReturnDate.Format("2006-01-02"))
		assert.Equal(t, 1, book.Amount)
	})

	t.Run("skipping dipinjam is rejected", func(t *testing.T) {
		f, borrow, _, adminID := setup(t)

		_, err := f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: workflow.StatusDikembalikan}, adminID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("terminal borrow accepts no further updates", func(t *testing.T) {
		f, borrow, book, adminID := setup(t)

		_, err := f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: workflow.StatusDitolak}, adminID)
		require.NoError(t, err)

		_, err = f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: workflow.StatusDipinjam}, adminID)
		assert.ErrorIs(t, err, ErrBorrowFinal)
		assert.Equal(t, 1, book.Amount, "stock must not be restored twice")
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		f, borrow, _, adminID := setup(t)

		_, err := f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: "approved"}, adminID)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("bad return date is rejected", func(t *testing.T) {
		f, borrow, _, adminID := setup(t)

		_, err := f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{
			Status:     workflow.StatusDitolak,
			ReturnDate: "10-01-2025",
		}, adminID)
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestBorrowService_Return(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*borrowFixture, *models.Borrow, *models.Book, *models.User) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(1)
		admin := f.users.add(&models.User{FullName: "Admin", Role: "admin", IsActive: true})

		borrow, err := f.svc.Borrow(ctx, user.ID, book.ID)
		require.NoError(t, err)
		_, err = f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: workflow.StatusDipinjam}, admin.ID)
		require.NoError(t, err)
		return f, borrow, book, user
	}

	t.Run("borrower returns own loan", func(t *testing.T) {
		f, borrow, book, user := setup(t)

		returned, err := f.svc.Return(ctx, borrow.ID, user.ID, "user")
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusDikembalikan, returned.Status)
		require.NotNil(t, returned.ReturnDate)
		assert.Equal(t, 1, book.Amount)
	})

	t.Run("repeated return is rejected and stock stays put", func(t *testing.T) {
		f, borrow, book, user := setup(t)

		_, err := f.svc.Return(ctx, borrow.ID, user.ID, "user")
		require.NoError(t, err)

		_, err = f.svc.Return(ctx, borrow.ID, user.ID, "user")
		assert.ErrorIs(t, err, ErrBorrowFinal)
		assert.Equal(t, 1, book.Amount)
	})

	t.Run("someone else cannot return the loan", func(t *testing.T) {
		f, borrow, _, _ := setup(t)
		other := f.users.add(&models.User{FullName: "Siti", Role: "user", IsActive: true})

		_, err := f.svc.Return(ctx, borrow.ID, other.ID, "user")
		assert.ErrorIs(t, err, ErrNotBorrower)
	})

	t.Run("admin may return on the borrower's behalf", func(t *testing.T) {
		f, borrow, _, _ := setup(t)
		admin := f.users.add(&models.User{FullName: "Admin Dua", Role: "admin", IsActive: true})

		returned, err := f.svc.Return(ctx, borrow.ID, admin.ID, "admin")
		require.NoError(t, err)
		assert.Equal(t, workflow.StatusDikembalikan, returned.Status)
	})

	t.Run("pending borrow cannot be returned", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(1)

		borrow, err := f.svc.Borrow(ctx, user.ID, book.ID)
		require.NoError(t, err)

		_, err = f.svc.Return(ctx, borrow.ID, user.ID, "user")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestBorrowService_BorrowEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(1)

		d, err := f.svc.BorrowEligibility(ctx, user.ID, book.ID)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("reports the admin restriction", func(t *testing.T) {
		f := newBorrowFixture()
		admin := f.users.add(&models.User{FullName: "Admin", Role: "admin", IsActive: true})
		book := f.seedBook(1)

		d, err := f.svc.BorrowEligibility(ctx, admin.ID, book.ID)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, "BORROW_ADMIN_FORBIDDEN", d.Reason)
	})

	t.Run("reports the pending borrow", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(2)

		_, err := f.svc.Borrow(ctx, user.ID, book.ID)
		require.NoError(t, err)

		d, err := f.svc.BorrowEligibility(ctx, user.ID, book.ID)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, "BORROW_PENDING_EXISTS", d.Reason)
	})

	t.Run("reports out of stock without mutating", func(t *testing.T) {
		f := newBorrowFixture()
		user := f.seedUser(true)
		book := f.seedBook(0)

		d, err := f.svc.BorrowEligibility(ctx, user.ID, book.ID)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, "BOOK_OUT_OF_STOCK", d.Reason)
		assert.Equal(t, 0, book.Amount)
	})
}

func TestBorrowService_History(t *testing.T) {
	ctx := context.Background()
	f := newBorrowFixture()
	user := f.seedUser(true)
	book := f.seedBook(1)
	admin := f.users.add(&models.User{FullName: "Admin", Role: "admin", IsActive: true})

	borrow, err := f.svc.Borrow(ctx, user.ID, book.ID)
	require.NoError(t, err)
	_, err = f.svc.AdminUpdate(ctx, borrow.ID, &AdminUpdateInput{Status: workflow.StatusDipinjam}, admin.ID)
	require.NoError(t, err)
	_, err = f.svc.Return(ctx, borrow.ID, user.ID, "user")
	require.NoError(t, err)

	logs, err := f.svc.History(ctx, borrow.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, workflow.StatusMenunggu, logs[0].ToStatus)
	assert.Equal(t, workflow.StatusDipinjam, logs[1].ToStatus)
	assert.Equal(t, workflow.StatusDikembalikan, logs[2].ToStatus)

	_, err = f.svc.History(ctx, 99)
	assert.ErrorIs(t, err, ErrBorrowNotFound)
}

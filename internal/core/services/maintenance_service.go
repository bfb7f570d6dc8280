package services

import (
	"context"
	"log"
	"time"

	"epersmip-backend/internal/adapters/persistence/repositories"
	"epersmip-backend/internal/config"

	"github.com/robfig/cron/v3"
)

// MaintenanceService runs scheduled housekeeping jobs: purging expired
// refresh tokens and reporting overdue loans.
type MaintenanceService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	borrowRepo       repositories.BorrowRepository
	cfg              *config.Config
	cron             *cron.Cron
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	borrowRepo repositories.BorrowRepository,
	cfg *config.Config,
) *MaintenanceService {
	return &MaintenanceService{
		refreshTokenRepo: refreshTokenRepo,
		borrowRepo:       borrowRepo,
		cfg:              cfg,
		cron:             cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *MaintenanceService) Start() {
	// Purge expired refresh tokens nightly at 03:00
	s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens)

	// Report overdue loans every morning at 08:00
	s.cron.AddFunc("0 8 * * *", s.reportOverdueLoans)

	s.cron.Start()
	log.Println("🚀 MaintenanceService started")
}

// Stop gracefully stops the scheduler
func (s *MaintenanceService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 MaintenanceService stopped")
}

func (s *MaintenanceService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Refresh token purge error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("🗑️ Purged %d expired refresh tokens", deleted)
	}
}

func (s *MaintenanceService) reportOverdueLoans() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deadline := time.Now().AddDate(0, 0, -s.cfg.Loan.PeriodDays)
	overdue, err := s.borrowRepo.ListOverdue(ctx, deadline)
	if err != nil {
		log.Printf("❌ Overdue loan query error: %v", err)
		return
	}

	for _, b := range overdue {
		log.Printf("⚠️ Overdue loan: borrow=%d user=%d book=%d borrowed=%s",
			b.ID, b.UserID, b.BookID, b.BorrowDate.Format("2006-01-02"))
	}
	if len(overdue) > 0 {
		log.Printf("⚠️ %d loans past the %d-day period", len(overdue), s.cfg.Loan.PeriodDays)
	}
}

package config

import (
	"log"

	"epersmip-backend/internal/adapters/persistence/models"
	"epersmip-backend/internal/core/domain"
	"epersmip-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedCategories(); err != nil {
		log.Printf("⚠️ Category seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser bootstraps the first admin. The system requires at least one
// admin at all times; this seed satisfies the invariant on a fresh database.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(getEnv("ADMIN_PASSWORD", "admin123456"))
	if err != nil {
		return err
	}

	admin := &models.User{
		FullName: "Administrator Perpustakaan",
		Email:    getEnv("ADMIN_EMAIL", "admin@epersmip.unhas.ac.id"),
		Password: hashedPassword,
		Role:     domain.RoleAdmin,
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Email)
	return nil
}

// seedCategories seeds the starter category tags for a fresh install
func (s *Seeder) seedCategories() error {
	var count int64
	s.db.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return nil
	}

	names := []string{
		"Matematika",
		"Statistika",
		"Ilmu Komputer",
		"Fisika",
		"Kimia",
		"Biologi",
		"Geofisika",
	}

	for _, name := range names {
		if err := s.db.Create(&models.Category{Name: name}).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d categories", len(names))
	return nil
}

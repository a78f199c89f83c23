package database

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"timeclock/models"
)

var DB *gorm.DB

func Init(dsn string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	if err := DB.AutoMigrate(&models.User{}, &models.Timesheet{}); err != nil {
		return err
	}

	// At most one open shift per user, enforced where concurrent
	// clock-ins actually race: in the database.
	err = DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_timesheets_open_shift
		ON timesheets (user_id) WHERE clock_in IS NOT NULL AND clock_out IS NULL`).Error
	if err != nil {
		return err
	}

	return nil
}

// EnsureAdmin seeds the default administrative account. It is a no-op
// when any admin already exists.
func EnsureAdmin(email, password string) error {
	var count int64
	if err := DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         "Admin",
		Email:        models.NormalizeEmail(email),
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	logrus.WithField("email", admin.Email).Info("default admin user created")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"timeclock/models"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) CreateUser(ctx context.Context, name, email, passwordHash string, role models.Role) (*models.User, error) {
	email = models.NormalizeEmail(email)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		user := models.User{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         role,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return s.FindUserByEmail(ctx, email)
}

func (s *GormStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("name asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) CreateTimesheet(ctx context.Context, userID uint, date time.Time, clockIn time.Time) (*models.Timesheet, error) {
	ts := models.Timesheet{
		UserID:  userID,
		Date:    date,
		ClockIn: &clockIn,
	}
	if err := s.db.WithContext(ctx).Create(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *GormStore) FindTimesheet(ctx context.Context, id uint) (*models.Timesheet, error) {
	var ts models.Timesheet
	if err := s.db.WithContext(ctx).First(&ts, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ts, nil
}

func (s *GormStore) FindOpenShift(ctx context.Context, userID uint) (*models.Timesheet, error) {
	var ts models.Timesheet
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND clock_in IS NOT NULL AND clock_out IS NULL", userID).
		Order("id desc").
		First(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *GormStore) ListTimesheetsForUser(ctx context.Context, userID uint) ([]models.Timesheet, error) {
	var rows []models.Timesheet
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("clock_in DESC NULLS LAST, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListAllTimesheets(ctx context.Context, limit int) ([]models.Timesheet, error) {
	var rows []models.Timesheet
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("clock_in DESC NULLS LAST, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListTimesheetsInRange(ctx context.Context, start, end time.Time) ([]models.Timesheet, error) {
	var rows []models.Timesheet
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("clock_in >= ? AND clock_in < ?", start, end).
		Order("clock_in ASC, user_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) SaveTimesheet(ctx context.Context, ts *models.Timesheet) error {
	return s.db.WithContext(ctx).Save(ts).Error
}

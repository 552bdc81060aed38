package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("record not found")

type Repository interface {
	CreateLandArea(ctx context.Context, area *LandArea) error
	GetLandArea(ctx context.Context, id uuid.UUID, userID string) (*LandArea, error)
	ListLandAreas(ctx context.Context, userID string) ([]LandArea, error)

	LatestSoilHealth(ctx context.Context, landAreaID uuid.UUID) (*SoilHealthRecord, error)
	ListSoilHealth(ctx context.Context, landAreaID uuid.UUID, limit int) ([]SoilHealthRecord, error)
	// SaveAnalysis stores a record with its optional alert and recommendations
	// atomically.
	SaveAnalysis(ctx context.Context, record *SoilHealthRecord, alert *AlertRecord, recs []RecommendationRecord) error

	ListAlerts(ctx context.Context, userID string, unreadOnly bool) ([]AlertRecord, error)
	MarkAlertRead(ctx context.Context, id uuid.UUID, userID string) error
	DeleteAlert(ctx context.Context, id uuid.UUID, userID string) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// NewPostgres connects to dsn and migrates the schema.
func NewPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&LandArea{},
		&SoilHealthRecord{},
		&AlertRecord{},
		&RecommendationRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (r *gormRepository) CreateLandArea(ctx context.Context, area *LandArea) error {
	if area.ID == uuid.Nil {
		area.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(area).Error; err != nil {
		return fmt.Errorf("failed to create land area: %w", err)
	}
	return nil
}

func (r *gormRepository) GetLandArea(ctx context.Context, id uuid.UUID, userID string) (*LandArea, error) {
	var area LandArea
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&area).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get land area: %w", err)
	}
	return &area, nil
}

func (r *gormRepository) ListLandAreas(ctx context.Context, userID string) ([]LandArea, error) {
	var areas []LandArea
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&areas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list land areas: %w", err)
	}
	return areas, nil
}

func (r *gormRepository) LatestSoilHealth(ctx context.Context, landAreaID uuid.UUID) (*SoilHealthRecord, error) {
	var rec SoilHealthRecord
	err := r.db.WithContext(ctx).
		Where("land_area_id = ?", landAreaID).
		Order("analysis_date DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest soil health: %w", err)
	}
	return &rec, nil
}

func (r *gormRepository) ListSoilHealth(ctx context.Context, landAreaID uuid.UUID, limit int) ([]SoilHealthRecord, error) {
	var recs []SoilHealthRecord
	q := r.db.WithContext(ctx).
		Where("land_area_id = ?", landAreaID).
		Order("analysis_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list soil health: %w", err)
	}
	return recs, nil
}

func (r *gormRepository) SaveAnalysis(ctx context.Context, record *SoilHealthRecord, alert *AlertRecord, recs []RecommendationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to store soil health data: %w", err)
		}
		if alert != nil {
			if err := tx.Create(alert).Error; err != nil {
				return fmt.Errorf("failed to store alert: %w", err)
			}
		}
		if len(recs) > 0 {
			if err := tx.Create(&recs).Error; err != nil {
				return fmt.Errorf("failed to store recommendations: %w", err)
			}
		}
		return nil
	})
}

func (r *gormRepository) ListAlerts(ctx context.Context, userID string, unreadOnly bool) ([]AlertRecord, error) {
	var alerts []AlertRecord
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *gormRepository) MarkAlertRead(ctx context.Context, id uuid.UUID, userID string) error {
	res := r.db.WithContext(ctx).
		Model(&AlertRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to update alert: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) DeleteAlert(ctx context.Context, id uuid.UUID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&AlertRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete alert: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

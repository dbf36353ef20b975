package school

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context) ([]School, error)
	Create(ctx context.Context, s *School) error
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// AutoMigrate creates or updates the schools table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&School{})
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return newStoreError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &StoreError{Op: "ping", Unavailable: true, Cause: err}
	}
	return nil
}

func (r *repository) ensureTable(ctx context.Context, op string) error {
	if err := r.Ping(ctx); err != nil {
		return err
	}
	if !r.db.WithContext(ctx).Migrator().HasTable(&School{}) {
		return &StoreError{Op: op, Unavailable: true, Cause: ErrTableMissing}
	}
	return nil
}

// List returns every row, newest first.
func (r *repository) List(ctx context.Context) ([]School, error) {
	if err := r.ensureTable(ctx, "list"); err != nil {
		return nil, err
	}

	var schools []School
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&schools).Error; err != nil {
		return nil, newStoreError("list", err)
	}
	return schools, nil
}

func (r *repository) Create(ctx context.Context, s *School) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return newStoreError("create", err)
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureTable(ctx, "count"); err != nil {
		return 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&School{}).Count(&total).Error; err != nil {
		return 0, newStoreError("count", err)
	}
	return total, nil
}

package truck

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repo 基于 GORM/MySQL 的持久化实现。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Load(ctx context.Context) ([]Truck, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var trucks []Truck
	if err := db.Order("created_at DESC").Find(&trucks).Error; err != nil {
		return nil, err
	}
	return trucks, nil
}

func (r *Repo) Save(ctx context.Context, t *Truck) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(t).Error
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Where("id = ?", id).Delete(&Truck{}).Error
}

package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]*domain.Record, error) {
	var records []*domain.Record
	err := db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Order("created_at desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Record, error) {
	var record domain.Record
	err := db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(record).Error
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) SetArchived(ctx context.Context, db *gorm.DB, id snowflake.ID, archived bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("id = ?", id).
		Update("archived", archived)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Record{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	// Cascade is declared on the association, but sqlite setups without
	// foreign keys enabled still need the explicit cleanup.
	return db.WithContext(ctx).
		Where("record_id = ?", id).
		Delete(&domain.Payment{}).Error
}

// ReplaceAll swaps the entire record set inside the caller's
// transaction: all rows out, the new snapshot in. The caller owns the
// transaction so a failed merge never half-overwrites the store.
func (r *repo) ReplaceAll(ctx context.Context, tx *gorm.DB, records []*domain.Record) error {
	if err := tx.WithContext(ctx).Where("1 = 1").Delete(&domain.Payment{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("1 = 1").Delete(&domain.Record{}).Error; err != nil {
		return err
	}
	for _, rec := range records {
		if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
			return err
		}
	}
	return nil
}

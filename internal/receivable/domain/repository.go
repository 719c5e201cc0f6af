package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the local persistence port. Implementations are assumed
// durable and single-writer; tx-taking methods run inside the caller's
// transaction so a failed merge never partially overwrites the store.
type Repository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]*Record, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Record, error)
	Insert(ctx context.Context, db *gorm.DB, record *Record) error
	Update(ctx context.Context, db *gorm.DB, record *Record) error
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	SetArchived(ctx context.Context, db *gorm.DB, id snowflake.ID, archived bool) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ReplaceAll(ctx context.Context, tx *gorm.DB, records []*Record) error
}

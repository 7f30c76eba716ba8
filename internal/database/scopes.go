package database

import (
	"gorm.io/gorm"

	"github.com/anjaswicak/test-fullstack/internal/pagination"
)

// Paginate applies a resolved limit/offset.
func Paginate(p pagination.Params) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(p.Limit).Offset(p.Offset)
	}
}

// Newest orders by creation time, newest first. The id tiebreak keeps pages
// stable when several rows share a timestamp.
func Newest(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".created_at DESC").Order(table + ".id DESC")
	}
}

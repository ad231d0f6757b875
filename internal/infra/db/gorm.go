package db

import (
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(dsn string) (*gorm.DB, error) {
	// DATABASE_URL があれば最優先で使う
	if v := os.Getenv("DATABASE_URL"); v != "" {
		dsn = v
	}

	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

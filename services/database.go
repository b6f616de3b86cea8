package services

import (
	"fmt"
	"log"

	"huntian-backend/config"
	"huntian-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase - 설정된 드라이버로 DB 연결 후 마이그레이션
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("DB 연결 실패: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case "mysql":
		log.Printf("✅ MySQL 연결 및 마이그레이션 완료 (%s@%s:%d/%s)", cfg.User, cfg.Host, cfg.Port, cfg.Name)
	default:
		log.Printf("✅ SQLite 연결 및 마이그레이션 완료 (%s)", cfg.SQLitePath)
	}
	return db, nil
}

// Migrate - 테이블 자동 생성
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.SimulationRun{},
		&models.SimulationLog{},
	); err != nil {
		return fmt.Errorf("마이그레이션 실패: %w", err)
	}
	return nil
}

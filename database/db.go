package database

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Db *gorm.DB

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	case "mysql":
		// e.g. user:pass@tcp(host:3306)/videoanalyzer?charset=utf8mb4&parseTime=true
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.New(postgres.Config{DSN: dsn}), nil
	default:
		return nil, fmt.Errorf("unsupported database driver '%s'", driver)
	}
}

// Init opens the job database and migrates the schema.
func Init(driver, dsn string) error {
	d, err := dialector(driver, dsn)
	if err != nil {
		return err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	Db = db

	if err := migrate(); err != nil {
		return err
	}
	log.Infof("[database] Connected to %s database", driver)

	return nil
}

func migrate() error {
	if err := Db.AutoMigrate(&AnalysisJob{}); err != nil {
		return fmt.Errorf("[Migrate] Error AnalysisJob: %w", err)
	}
	return nil
}

func Close() error {
	if Db == nil {
		return nil
	}
	sqlDB, err := Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

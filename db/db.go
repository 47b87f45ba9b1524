package db

import (
	"fmt"
	"os"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSNFromEnv 兼容旧的 DB_* 变量
func DSNFromEnv() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
}

func ConnectDB(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Book{}, &models.LoanRecord{}, &models.LoanItem{}); err != nil {
		return err
	}

	// 资格检查 / 逾期查询都只看未归还的条目
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_by_user
	  ON %s (user_id, due_date)
	  WHERE returned = FALSE;
	`, models.LoanItemTable, models.LoanItemTable)).Error; err != nil {
		return err
	}

	return nil
}

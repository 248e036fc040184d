package db

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hotelac/internal/logger"
)

// Open 打开数据库并迁移全部表
func Open(path string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := gdb.AutoMigrate(&RoomRecord{}, &Detail{}, &Bill{}, &User{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return gdb, nil
}

// EnsureUsers 首次启动时写入内置账号
func EnsureUsers(gdb *gorm.DB) error {
	seed := []User{
		{Username: "admin", Password: "admin123", Identity: "administrator"},
		{Username: "manager", Password: "manager123", Identity: "manager"},
		{Username: "reception", Password: "reception123", Identity: "reception"},
	}
	for _, u := range seed {
		var count int64
		if err := gdb.Model(&User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := gdb.Create(&u).Error; err != nil {
				return err
			}
			logger.Info("创建内置用户: %s (%s)", u.Username, u.Identity)
		}
	}
	return nil
}

package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookcatalog/internal/domain/audit"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
)

// NewDB 创建数据库连接并迁移表结构，cleanup关闭连接池
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         newGormLogger(log, logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	log.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

// Migrate 自动迁移表结构
// 生产环境应使用版本化迁移脚本
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&EditModel{},
	)
}

type gormWriter struct {
	log *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(format, args...)
}

func newGormLogger(log *zap.Logger, level logger.LogLevel) logger.Interface {
	return logger.New(gormWriter{log: log.Named("gorm").Sugar()}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// UserModel GORM用户模型
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string    `gorm:"size:50;not null;comment:昵称"`
	Roles     []string  `gorm:"serializer:json;comment:角色"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 价格用double存储，和接口里的数字一致；ISBN不唯一
type BookModel struct {
	ID              string    `gorm:"primaryKey;size:36"`
	ISBN            string    `gorm:"index;size:32;not null;comment:ISBN号"`
	Title           string    `gorm:"size:255;not null;comment:书名"`
	Author          string    `gorm:"index:idx_author;size:255;not null;comment:作者"`
	Genre           string    `gorm:"index:idx_genre_price,priority:1;size:32;not null;comment:类型"`
	PublicationYear int       `gorm:"not null;comment:出版年份"`
	Price           float64   `gorm:"index:idx_genre_price,priority:2;not null;comment:价格"`
	Description     string    `gorm:"type:text;not null;comment:图书描述"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// EditModel 审计事件，只插入不更新
type EditModel struct {
	ID         string      `gorm:"primaryKey;size:36"`
	Timestamp  time.Time   `gorm:"index;not null;comment:事件时间"`
	Op         string      `gorm:"size:16;not null;comment:操作类型"`
	Collection string      `gorm:"size:32;not null;comment:目标集合"`
	TargetID   string      `gorm:"index;size:36;not null;comment:目标ID"`
	Actor      audit.Actor `gorm:"serializer:json;comment:操作人"`
}

// TableName 指定表名
func (EditModel) TableName() string {
	return "edits"
}

package orm

import (
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/jobs/dcron/internal/infra/persistence/commonrepo"
	"github.com/jobs/dcron/internal/infra/persistence/noderepo"
	"github.com/jobs/dcron/internal/infra/persistence/taskdetailrepo"
	"github.com/jobs/dcron/internal/infra/persistence/taskrepo"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Provider = wire.NewSet(New, ProvideDB)

type Config struct {
	Host                  string
	Port                  int
	Database              string
	User                  string
	Password              string
	MaxConnections        int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
	AutoMigrate           bool
}

func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

type Storage struct {
	db *gorm.DB
}

// New 连接 MySQL
func New(cfg Config) (*Storage, error) {
	return Open(mysql.Open(cfg.DSN()), cfg)
}

// Open builds a Storage on any gorm dialector.
func Open(dialector gorm.Dialector, cfg Config) (*Storage, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	if cfg.ConnectionMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnectionMaxLifetime)
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return &Storage{db: db}, nil
}

// Migrate 建表: 任务, 执行记录, 节点
func Migrate(db commonrepo.DB) error {
	if err := db.AutoMigrate(
		&taskrepo.TaskPo{},
		&taskdetailrepo.TaskDetailPo{},
		&noderepo.NodePo{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// ProvideDB exposes the gorm handle to the repositories.
func ProvideDB(s *Storage) commonrepo.DB {
	return s.db
}

func (s *Storage) DB() *gorm.DB {
	return s.db
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

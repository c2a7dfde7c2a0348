package main

import (
	"flag"
	"log"

	"github.com/jobs/dcron/internal/orm"
	"github.com/jobs/dcron/pkg/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 只建表, 不依赖 database.auto_migrate
	ormCfg := ProvideMigrateConfig(cfg)
	storage, err := orm.New(ormCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer storage.Close()

	if err := orm.Migrate(storage.DB()); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
	log.Println("Migration completed successfully!")
}

func ProvideMigrateConfig(cfg *config.Config) orm.Config {
	return orm.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	}
}

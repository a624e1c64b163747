package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/validators/runner/internal/orm"
	"github.com/validators/runner/pkg/config"
)

// 建表走 gorm AutoMigrate，脚本登记种子数据走原生 SQL 文件
func main() {
	var configPath string
	var seedPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.StringVar(&seedPath, "seed", "scripts/seed_scripts.sql", "path to seed SQL file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	storage, err := orm.New(orm.Config{
		Host:                  cfg.Database.Host,
		Port:                  cfg.Database.Port,
		Database:              cfg.Database.Database,
		User:                  cfg.Database.User,
		Password:              cfg.Database.Password,
		MaxConnections:        cfg.Database.MaxConnections,
		MaxIdleConnections:    cfg.Database.MaxIdleConnections,
		ConnectionMaxLifetime: cfg.Database.ConnectionMaxLifetime,
	})
	if err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}
	storage.Close()
	fmt.Println("Schema migrated")

	// 连接数据库
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// 读取 SQL 文件
	sqlBytes, err := os.ReadFile(seedPath)
	if err != nil {
		log.Fatal("Failed to read SQL file:", err)
	}

	// 分割 SQL 语句并执行
	sqlStatements := strings.Split(string(sqlBytes), ";")
	for _, stmt := range sqlStatements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}

		fmt.Printf("Executing: %s...\n", stmt[:min(50, len(stmt))])
		_, err := db.Exec(stmt)
		if err != nil {
			log.Printf("Error executing statement: %v", err)
		}
	}

	fmt.Println("Seed completed successfully!")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/davecgh/go-spew/spew"
	"github.com/validators/runner/internal/infra/persistence/executionrepo"
	"github.com/validators/runner/internal/orm"
	"github.com/validators/runner/pkg/config"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal(err)
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
		log.Fatal(err)
	}

	var executions []executionrepo.TaskExecutionPo
	if err := storage.DB().WithContext(context.Background()).
		Order("id DESC").Limit(20).Find(&executions).Error; err != nil {
		log.Fatal(err)
	}

	fmt.Printf("查询到 %d 条执行记录:\n", len(executions))
	for _, e := range executions {
		fmt.Printf("ID: %d, TaskID: %s, Script: %s, Status: %s\n",
			e.ID, e.TaskID, e.ScriptName, e.Status)
	}
	if len(executions) > 0 {
		spew.Dump(executions[0])
	}
}

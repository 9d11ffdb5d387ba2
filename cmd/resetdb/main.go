package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pu-ac-cn/appware-backend/internal/config"
	"github.com/pu-ac-cn/appware-backend/internal/database"
	"github.com/pu-ac-cn/appware-backend/internal/model"
)

// 一个只清理应用仓库相关表的重置工具：
// - 默认 Drop 表，然后可选地 AutoMigrate 重建。
// - 仅影响本项目的业务表，不会删除数据库、用户或其它表。
// 用法：
//
//	go run ./cmd/resetdb -force
//
// 可选参数：
//
//	-recreate  重建表（默认 true）
//	-force     必须为 true 才会执行（安全开关）
func main() {
	recreate := flag.Bool("recreate", true, "是否在清空后重建表")
	force := flag.Bool("force", false, "确认执行清空操作")
	flag.Parse()

	if !*force {
		log.Fatal("为避免误操作，请加上 -force 参数：go run ./cmd/resetdb -force")
	}

	// 加载配置并连接数据库
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()

	db := database.GetDB()
	m := db.Migrator()

	fmt.Println("开始清空应用仓库相关表...")
	if m.HasTable(&model.AppWare{}) {
		if err := m.DropTable(&model.AppWare{}); err != nil {
			log.Fatalf("删除表失败: %v", err)
		}
		fmt.Println("已删除表: appware")
	}

	if *recreate {
		if err := database.AutoMigrate(&model.AppWare{}); err != nil {
			log.Fatalf("重建表失败: %v", err)
		}
		fmt.Println("已重建表: appware")
	}

	fmt.Println("完成")
}

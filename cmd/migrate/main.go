// Package main 数据库迁移工具
package main

import (
	"flag"
	"log"
	"time"

	"github.com/pu-ac-cn/appware-backend/internal/config"
	"github.com/pu-ac-cn/appware-backend/internal/database"
	"github.com/pu-ac-cn/appware-backend/internal/model"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "", "配置文件路径")
	seed := flag.Bool("seed", false, "是否写入初始示例数据")
	flag.Parse()

	// 加载配置
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库连接
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()
	log.Println("数据库连接成功")

	// 执行迁移
	log.Println("开始执行数据库迁移...")
	if err := database.AutoMigrate(&model.AppWare{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库迁移完成")

	if *seed {
		if err := seedAppWares(); err != nil {
			log.Fatalf("写入初始数据失败: %v", err)
		}
		log.Println("初始数据写入完成")
	}
}

// seedAppWares 写入初始示例数据
// 已存在同名未删除记录时跳过，重复执行是安全的
func seedAppWares() error {
	db := database.GetDB()
	operator := model.SystemOperator
	now := time.Now()

	samples := []model.AppWare{
		{
			BaseModel: model.BaseModel{
				Name:      "示例应用仓库1",
				CreatedAt: now,
				CreatedBy: &operator,
				UpdatedAt: now,
				UpdatedBy: &operator,
				SortOrder: 1,
				Status:    model.StatusEnabled,
			},
			Remark:   "这是一个示例应用仓库，用于演示系统功能",
			Version:  1,
			IsActive: true,
		},
		{
			BaseModel: model.BaseModel{
				Name:      "示例应用仓库2",
				CreatedAt: now,
				CreatedBy: &operator,
				UpdatedAt: now,
				UpdatedBy: &operator,
				SortOrder: 2,
				Status:    model.StatusEnabled,
			},
			Remark:   "第二个示例应用仓库",
			Version:  1,
			IsActive: true,
		},
		{
			BaseModel: model.BaseModel{
				Name:      "示例应用仓库3",
				CreatedAt: now,
				CreatedBy: &operator,
				UpdatedAt: now,
				UpdatedBy: &operator,
				SortOrder: 3,
				Status:    model.StatusEnabled,
			},
			Remark:   "第三个示例应用仓库",
			Version:  1,
			IsActive: true,
		},
	}

	for i := range samples {
		var count int64
		if err := db.Model(&model.AppWare{}).
			Where("name = ?", samples[i].Name).
			Where("is_deleted = ?", false).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Printf("跳过已存在的记录: %s", samples[i].Name)
			continue
		}
		if err := db.Create(&samples[i]).Error; err != nil {
			return err
		}
		log.Printf("写入记录: %s", samples[i].Name)
	}
	return nil
}

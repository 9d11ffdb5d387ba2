// Package model 定义数据模型
package model

import (
	"time"
)

// BaseModel 基础模型，包含所有表的通用字段
// 软删除通过显式的 is_deleted 列实现，查询时必须在调用处显式指定
// 删除过滤条件（管理端需要读取已删除记录，不能依赖 GORM 的隐式过滤）
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;index" json:"name"` // 名称
	CreatedAt time.Time `json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(64)" json:"created_by,omitempty"` // 创建人 ID
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(64)" json:"updated_by,omitempty"` // 更新人 ID
	IsDeleted bool      `gorm:"default:false;index" json:"is_deleted"`        // 是否删除（软删除标记）
	SortOrder int       `gorm:"default:0" json:"sort_order"`                  // 排序
	Status    int       `gorm:"default:1" json:"status"`                      // 状态 1:启用 0:禁用
}

// 状态常量
const (
	StatusEnabled  = 1 // 启用
	StatusDisabled = 0 // 禁用
)

// SystemOperator 系统初始化数据的操作人标识
const SystemOperator = "system"

// Caller 当前请求的认证调用者身份
// 由认证中心签发的令牌解析而来，本服务只消费不生产身份
type Caller struct {
	ID          string // 用户 ID
	Username    string // 用户名
	IsSuperuser bool   // 是否超级管理员
}

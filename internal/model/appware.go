package model

// AppWare 应用仓库模型
// 目录中的一条应用资源记录，带浏览量统计和软删除标记
type AppWare struct {
	BaseModel
	Remark    string `gorm:"type:varchar(500)" json:"remark"`         // 备注
	Version   int    `gorm:"default:1" json:"version"`                // 版本号（预留，当前不参与并发控制）
	IsActive  bool   `gorm:"default:true" json:"is_active"`           // 是否激活
	ViewCount int64  `gorm:"type:bigint;default:0" json:"view_count"` // 浏览量
}

// TableName 指定表名
func (AppWare) TableName() string {
	return "appware"
}

// IsEnabled 检查应用仓库是否启用
func (a *AppWare) IsEnabled() bool {
	return a.Status == StatusEnabled
}

// IsVisible 检查应用仓库是否对热门榜可见（启用且激活且未删除）
func (a *AppWare) IsVisible() bool {
	return !a.IsDeleted && a.IsEnabled() && a.IsActive
}

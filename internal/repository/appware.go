// Package repository 数据访问层
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pu-ac-cn/appware-backend/internal/model"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrAppWareNotFound = errors.New("应用仓库不存在")
)

// Pagination 分页参数
// Skip/Limit 语义与 HTTP 查询参数一致，范围校验由 service 层完成
type Pagination struct {
	Skip  int // 跳过数量，>= 0
	Limit int // 返回数量上限
}

// AppWareFilter 应用仓库查询过滤器
// IncludeDeleted 必须由调用处显式给出，避免管理端路径的软删除过滤遗漏
type AppWareFilter struct {
	Status         *int   // 状态筛选，nil 表示不过滤
	IsActive       *bool  // 激活筛选，nil 表示不过滤
	CreatedBy      string // 创建人筛选，空表示不过滤
	IncludeDeleted bool   // 是否包含已删除记录（仅管理端允许）
}

// AppWareRepository 应用仓库数据访问接口
type AppWareRepository interface {
	Create(ctx context.Context, ware *model.AppWare) error
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*model.AppWare, error)
	GetByName(ctx context.Context, name string) (*model.AppWare, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*model.AppWare, error)
	SoftDelete(ctx context.Context, id int64, deletedBy string) error
	List(ctx context.Context, filter *AppWareFilter, page *Pagination) ([]*model.AppWare, int64, error)
	ListPopular(ctx context.Context, limit int) ([]*model.AppWare, error)
	IncrementViewCount(ctx context.Context, id int64) (*model.AppWare, error)
}

// appWareRepository 应用仓库数据访问实现
type appWareRepository struct {
	db *gorm.DB
}

// NewAppWareRepository 创建应用仓库数据访问实例
func NewAppWareRepository(db *gorm.DB) AppWareRepository {
	return &appWareRepository{db: db}
}

// Create 创建应用仓库记录
func (r *appWareRepository) Create(ctx context.Context, ware *model.AppWare) error {
	return r.db.WithContext(ctx).Create(ware).Error
}

// GetByID 根据 ID 获取应用仓库记录
// includeDeleted 为 false 时排除已软删除的记录
func (r *appWareRepository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*model.AppWare, error) {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	var ware model.AppWare
	if err := query.First(&ware).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppWareNotFound
		}
		return nil, err
	}
	return &ware, nil
}

// GetByName 根据名称获取未删除的应用仓库记录
// 名称唯一性约束只作用于未删除记录，已删除记录的名称可以复用
func (r *appWareRepository) GetByName(ctx context.Context, name string) (*model.AppWare, error) {
	var ware model.AppWare
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Where("is_deleted = ?", false).
		First(&ware).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppWareNotFound
		}
		return nil, err
	}
	return &ware, nil
}

// Update 按字段集合更新应用仓库记录并返回更新后的记录
// fields 只包含请求中显式出现的字段，updated_at 由本方法统一补充
func (r *appWareRepository) Update(ctx context.Context, id int64, fields map[string]any) (*model.AppWare, error) {
	fields["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&model.AppWare{}).
		Where("id = ?", id).
		Where("is_deleted = ?", false).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAppWareNotFound
	}

	return r.GetByID(ctx, id, false)
}

// SoftDelete 软删除应用仓库记录
// 已删除的记录再次删除视为不存在
func (r *appWareRepository) SoftDelete(ctx context.Context, id int64, deletedBy string) error {
	result := r.db.WithContext(ctx).Model(&model.AppWare{}).
		Where("id = ?", id).
		Where("is_deleted = ?", false).
		Updates(map[string]any{
			"is_deleted": true,
			"updated_at": time.Now(),
			"updated_by": deletedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAppWareNotFound
	}
	return nil
}

// List 查询应用仓库列表
// 总数与分页查询共用同一过滤条件，但独立计算，页为空时总数仍然正确
func (r *appWareRepository) List(ctx context.Context, filter *AppWareFilter, page *Pagination) ([]*model.AppWare, int64, error) {
	var wares []*model.AppWare
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&model.AppWare{}), filter)

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	if page != nil {
		if page.Skip > 0 {
			query = query.Offset(page.Skip)
		}
		if page.Limit > 0 {
			query = query.Limit(page.Limit)
		}
	}

	// 排序：sort_order 升序，同组内按创建时间倒序
	if err := query.Order("sort_order ASC").Order("created_at DESC").Find(&wares).Error; err != nil {
		return nil, 0, err
	}

	return wares, total, nil
}

// ListPopular 查询热门应用仓库（按浏览量排序）
// 热门榜只展示启用且激活的未删除记录，不受调用方过滤参数影响
func (r *appWareRepository) ListPopular(ctx context.Context, limit int) ([]*model.AppWare, error) {
	var wares []*model.AppWare
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("status = ?", model.StatusEnabled).
		Where("is_active = ?", true).
		Order("view_count DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&wares).Error
	if err != nil {
		return nil, err
	}
	return wares, nil
}

// IncrementViewCount 原子递增浏览量并返回更新后的记录
// 使用数据库端的自增表达式，并发详情读取不会丢失计数
func (r *appWareRepository) IncrementViewCount(ctx context.Context, id int64) (*model.AppWare, error) {
	result := r.db.WithContext(ctx).Model(&model.AppWare{}).
		Where("id = ?", id).
		Where("is_deleted = ?", false).
		Updates(map[string]any{
			"view_count": gorm.Expr("view_count + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAppWareNotFound
	}

	return r.GetByID(ctx, id, false)
}

// applyFilter 组装过滤条件
func (r *appWareRepository) applyFilter(query *gorm.DB, filter *AppWareFilter) *gorm.DB {
	if filter == nil {
		return query.Where("is_deleted = ?", false)
	}
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	return query
}

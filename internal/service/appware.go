// Package service 业务逻辑层
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pu-ac-cn/appware-backend/internal/model"
	"github.com/pu-ac-cn/appware-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

var (
	ErrAppWareNameEmpty     = errors.New("应用仓库名称不能为空")
	ErrAppWareNameTooLong   = errors.New("应用仓库名称不能超过 255 个字符")
	ErrAppWareRemarkTooLong = errors.New("备注不能超过 500 个字符")
	ErrAppWareNameExists    = errors.New("应用仓库名称已存在")
	ErrInvalidStatus        = errors.New("无效的状态值")
	ErrPermissionDenied     = errors.New("没有权限执行此操作")
)

// 分页与热门榜的取值范围
const (
	DefaultListLimit    = 100
	MaxListLimit        = 1000
	DefaultPopularLimit = 10
	MaxPopularLimit     = 50
)

// popularCacheKey 热门榜缓存键格式
const popularCacheKey = "appware:popular:%d"

// ListOptions 列表查询选项
type ListOptions struct {
	Skip           int   // 跳过数量
	Limit          int   // 返回数量上限
	Status         *int  // 状态筛选
	IsActive       *bool // 激活筛选
	IncludeDeleted bool  // 是否包含已删除记录，仅管理端列表生效
}

// AppWareUpdate 部分更新载荷
// 指针字段区分「未出现」与「显式置空」：nil 表示不修改，
// 非 nil（包括零值）表示用该值覆盖
type AppWareUpdate struct {
	Name      *string `json:"name"`
	Remark    *string `json:"remark"`
	SortOrder *int    `json:"sort_order"`
	Status    *int    `json:"status"`
	IsActive  *bool   `json:"is_active"`
	ViewCount *int64  `json:"view_count"`
}

// AppWareService 应用仓库业务接口
type AppWareService interface {
	Create(ctx context.Context, caller *model.Caller, ware *model.AppWare) error
	Get(ctx context.Context, id int64) (*model.AppWare, error)
	List(ctx context.Context, opts *ListOptions) ([]*model.AppWare, int64, error)
	ListMine(ctx context.Context, caller *model.Caller, opts *ListOptions) ([]*model.AppWare, int64, error)
	ListAdmin(ctx context.Context, caller *model.Caller, opts *ListOptions) ([]*model.AppWare, int64, error)
	Popular(ctx context.Context, limit int) ([]*model.AppWare, error)
	Update(ctx context.Context, caller *model.Caller, id int64, upd *AppWareUpdate) (*model.AppWare, error)
	Delete(ctx context.Context, caller *model.Caller, id int64) error
}

// appWareService 应用仓库业务实现
type appWareService struct {
	repo     repository.AppWareRepository
	cache    *redis.Client // 热门榜缓存，nil 时直接查库
	cacheTTL time.Duration
}

// NewAppWareService 创建应用仓库业务实例
// cache 可以为 nil，此时热门榜不走缓存
func NewAppWareService(repo repository.AppWareRepository, cache *redis.Client, cacheTTL time.Duration) AppWareService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &appWareService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// Create 创建应用仓库
// 名称在未删除记录中唯一；创建人与更新人均记录为当前调用者
// 注意：唯一性检查与写入不在同一事务中，两个并发创建同名记录
// 存在理论上的竞争窗口（名称唯一约束无法跨 MySQL/PostgreSQL 以
// 「仅未删除记录唯一」的形式下推到存储层）
func (s *appWareService) Create(ctx context.Context, caller *model.Caller, ware *model.AppWare) error {
	ware.Name = strings.TrimSpace(ware.Name)
	if err := s.validateFields(ware.Name, ware.Remark, ware.Status); err != nil {
		return err
	}

	// 名称唯一性检查（只针对未删除记录）
	if _, err := s.repo.GetByName(ctx, ware.Name); err == nil {
		return ErrAppWareNameExists
	} else if !errors.Is(err, repository.ErrAppWareNotFound) {
		return err
	}

	ware.CreatedBy = &caller.ID
	ware.UpdatedBy = &caller.ID
	ware.IsDeleted = false
	if ware.Version == 0 {
		ware.Version = 1
	}
	return s.repo.Create(ctx, ware)
}

// Get 获取应用仓库详情
// 每次成功读取都会使浏览量 +1 并刷新更新时间，返回递增后的记录
func (s *appWareService) Get(ctx context.Context, id int64) (*model.AppWare, error) {
	return s.repo.IncrementViewCount(ctx, id)
}

// List 查询应用仓库列表
func (s *appWareService) List(ctx context.Context, opts *ListOptions) ([]*model.AppWare, int64, error) {
	opts = normalizeListOptions(opts)
	filter := &repository.AppWareFilter{
		Status:   opts.Status,
		IsActive: opts.IsActive,
	}
	return s.repo.List(ctx, filter, &repository.Pagination{Skip: opts.Skip, Limit: opts.Limit})
}

// ListMine 查询当前调用者创建的应用仓库列表
func (s *appWareService) ListMine(ctx context.Context, caller *model.Caller, opts *ListOptions) ([]*model.AppWare, int64, error) {
	opts = normalizeListOptions(opts)
	filter := &repository.AppWareFilter{
		Status:    opts.Status,
		IsActive:  opts.IsActive,
		CreatedBy: caller.ID,
	}
	return s.repo.List(ctx, filter, &repository.Pagination{Skip: opts.Skip, Limit: opts.Limit})
}

// ListAdmin 管理员查询所有应用仓库列表
// 仅超级管理员可用；IncludeDeleted 为 true 时包含已删除记录
func (s *appWareService) ListAdmin(ctx context.Context, caller *model.Caller, opts *ListOptions) ([]*model.AppWare, int64, error) {
	if caller == nil || !caller.IsSuperuser {
		return nil, 0, ErrPermissionDenied
	}
	opts = normalizeListOptions(opts)
	filter := &repository.AppWareFilter{
		Status:         opts.Status,
		IsActive:       opts.IsActive,
		IncludeDeleted: opts.IncludeDeleted,
	}
	return s.repo.List(ctx, filter, &repository.Pagination{Skip: opts.Skip, Limit: opts.Limit})
}

// Popular 查询热门应用仓库（按浏览量倒序）
// 结果带短 TTL 缓存，写操作不主动失效，过期后自然刷新
func (s *appWareService) Popular(ctx context.Context, limit int) ([]*model.AppWare, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	if limit > MaxPopularLimit {
		limit = MaxPopularLimit
	}

	key := fmt.Sprintf(popularCacheKey, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var wares []*model.AppWare
			if err := json.Unmarshal(data, &wares); err == nil {
				return wares, nil
			}
		}
	}

	wares, err := s.repo.ListPopular(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(wares); err == nil {
			// 缓存写入失败不影响正常返回
			s.cache.Set(ctx, key, data, s.cacheTTL)
		}
	}
	return wares, nil
}

// Update 部分更新应用仓库
// 仅创建者或超级管理员可修改；只覆盖载荷中显式出现的字段
func (s *appWareService) Update(ctx context.Context, caller *model.Caller, id int64, upd *AppWareUpdate) (*model.AppWare, error) {
	ware, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if !CanMutate(caller, ware) {
		return nil, ErrPermissionDenied
	}

	fields := make(map[string]any)
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, ErrAppWareNameEmpty
		}
		if len(name) > 255 {
			return nil, ErrAppWareNameTooLong
		}
		// 改名时重新检查与其他未删除记录的冲突
		if name != ware.Name {
			if _, err := s.repo.GetByName(ctx, name); err == nil {
				return nil, ErrAppWareNameExists
			} else if !errors.Is(err, repository.ErrAppWareNotFound) {
				return nil, err
			}
		}
		fields["name"] = name
	}
	if upd.Remark != nil {
		if len(*upd.Remark) > 500 {
			return nil, ErrAppWareRemarkTooLong
		}
		fields["remark"] = *upd.Remark
	}
	if upd.SortOrder != nil {
		fields["sort_order"] = *upd.SortOrder
	}
	if upd.Status != nil {
		if *upd.Status != model.StatusEnabled && *upd.Status != model.StatusDisabled {
			return nil, ErrInvalidStatus
		}
		fields["status"] = *upd.Status
	}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}
	if upd.ViewCount != nil {
		fields["view_count"] = *upd.ViewCount
	}
	fields["updated_by"] = caller.ID

	return s.repo.Update(ctx, id, fields)
}

// Delete 软删除应用仓库
// 仅创建者或超级管理员可删除；记录保留，管理端仍可见
func (s *appWareService) Delete(ctx context.Context, caller *model.Caller, id int64) error {
	ware, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return err
	}

	if !CanMutate(caller, ware) {
		return ErrPermissionDenied
	}

	return s.repo.SoftDelete(ctx, id, caller.ID)
}

// validateFields 校验创建时的字段取值
func (s *appWareService) validateFields(name, remark string, status int) error {
	if name == "" {
		return ErrAppWareNameEmpty
	}
	if len(name) > 255 {
		return ErrAppWareNameTooLong
	}
	if len(remark) > 500 {
		return ErrAppWareRemarkTooLong
	}
	if status != model.StatusEnabled && status != model.StatusDisabled {
		return ErrInvalidStatus
	}
	return nil
}

// normalizeListOptions 补全并收敛分页参数
func normalizeListOptions(opts *ListOptions) *ListOptions {
	if opts == nil {
		opts = &ListOptions{}
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	return opts
}

// Package handler HTTP 处理器
package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pu-ac-cn/appware-backend/internal/middleware"
	"github.com/pu-ac-cn/appware-backend/internal/model"
	"github.com/pu-ac-cn/appware-backend/internal/repository"
	"github.com/pu-ac-cn/appware-backend/internal/service"
	"github.com/pu-ac-cn/appware-backend/pkg/response"
)

// AppWareHandler 应用仓库处理器
type AppWareHandler struct {
	wareService service.AppWareService
}

// NewAppWareHandler 创建应用仓库处理器
func NewAppWareHandler(wareSvc service.AppWareService) *AppWareHandler {
	return &AppWareHandler{wareService: wareSvc}
}

// ListAppWares 获取应用仓库列表
// GET /api/v1/appwares
func (h *AppWareHandler) ListAppWares(c *gin.Context) {
	opts, err := parseListOptions(c)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	wares, total, err := h.wareService.List(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, h.listToResponse(wares, total))
}

// ListMyAppWares 获取当前用户创建的应用仓库列表
// GET /api/v1/appwares/my
func (h *AppWareHandler) ListMyAppWares(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		response.Error(c, response.CodeInvalidToken)
		return
	}

	opts, err := parseListOptions(c)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	wares, total, err := h.wareService.ListMine(c.Request.Context(), caller, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, h.listToResponse(wares, total))
}

// ListPopularAppWares 获取热门应用仓库列表
// GET /api/v1/appwares/popular
func (h *AppWareHandler) ListPopularAppWares(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPopularLimit)))
	if err != nil || limit < 1 || limit > service.MaxPopularLimit {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "limit 取值范围为 1-50")
		return
	}

	wares, err := h.wareService.Popular(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	list := make([]gin.H, len(wares))
	for i, ware := range wares {
		list[i] = h.wareToResponse(ware)
	}
	response.Success(c, list)
}

// ListAllAppWares 管理员获取所有应用仓库列表（可包含已删除记录）
// GET /api/v1/appwares/admin/all
func (h *AppWareHandler) ListAllAppWares(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		response.Error(c, response.CodeInvalidToken)
		return
	}

	opts, err := parseListOptions(c)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}
	opts.IncludeDeleted = c.DefaultQuery("include_deleted", "false") == "true"

	wares, total, err := h.wareService.ListAdmin(c.Request.Context(), caller, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, h.listToResponse(wares, total))
}

// GetAppWare 获取应用仓库详情
// GET /api/v1/appwares/:id
// 每次成功读取都会使浏览量 +1
func (h *AppWareHandler) GetAppWare(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "无效的 ID")
		return
	}

	ware, err := h.wareService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, h.wareToResponse(ware))
}

// CreateAppWareRequest 创建应用仓库请求
type CreateAppWareRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	Remark    string `json:"remark" binding:"max=500"`
	SortOrder int    `json:"sort_order"`
	Status    *int   `json:"status"`
	IsActive  *bool  `json:"is_active"`
	ViewCount *int64 `json:"view_count"`
}

// CreateAppWare 创建应用仓库
// POST /api/v1/appwares
func (h *AppWareHandler) CreateAppWare(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		response.Error(c, response.CodeInvalidToken)
		return
	}

	var req CreateAppWareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	ware := &model.AppWare{
		Remark:   req.Remark,
		IsActive: true,
	}
	ware.Name = req.Name
	ware.SortOrder = req.SortOrder
	ware.Status = model.StatusEnabled
	if req.Status != nil {
		ware.Status = *req.Status
	}
	if req.IsActive != nil {
		ware.IsActive = *req.IsActive
	}
	if req.ViewCount != nil {
		ware.ViewCount = *req.ViewCount
	}

	if err := h.wareService.Create(c.Request.Context(), caller, ware); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, h.wareToResponse(ware))
}

// UpdateAppWare 更新应用仓库（部分更新）
// PUT /api/v1/appwares/:id
func (h *AppWareHandler) UpdateAppWare(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		response.Error(c, response.CodeInvalidToken)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "无效的 ID")
		return
	}

	var upd service.AppWareUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	ware, err := h.wareService.Update(c.Request.Context(), caller, id, &upd)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, h.wareToResponse(ware))
}

// DeleteAppWare 软删除应用仓库
// DELETE /api/v1/appwares/:id
func (h *AppWareHandler) DeleteAppWare(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		response.Error(c, response.CodeInvalidToken)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "无效的 ID")
		return
	}

	if err := h.wareService.Delete(c.Request.Context(), caller, id); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMsg(c, "删除成功", gin.H{"message": "应用仓库删除成功"})
}

// handleError 业务错误转响应
func (h *AppWareHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrAppWareNotFound):
		response.Error(c, response.CodeAppWareNotFound)
	case errors.Is(err, service.ErrAppWareNameExists):
		response.Error(c, response.CodeAppWareExists)
	case errors.Is(err, service.ErrPermissionDenied):
		response.Error(c, response.CodeForbidden)
	case errors.Is(err, service.ErrAppWareNameEmpty),
		errors.Is(err, service.ErrAppWareNameTooLong),
		errors.Is(err, service.ErrAppWareRemarkTooLong),
		errors.Is(err, service.ErrInvalidStatus):
		response.ErrorWithMsg(c, response.CodeInvalidRequest, err.Error())
	default:
		response.Error(c, response.CodeServerError)
	}
}

// parseListOptions 解析列表查询参数
func parseListOptions(c *gin.Context) (*service.ListOptions, error) {
	opts := &service.ListOptions{}

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		return nil, errors.New("skip 必须为非负整数")
	}
	opts.Skip = skip

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultListLimit)))
	if err != nil || limit < 1 || limit > service.MaxListLimit {
		return nil, errors.New("limit 取值范围为 1-1000")
	}
	opts.Limit = limit

	if v := c.Query("status"); v != "" {
		status, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("status 必须为整数")
		}
		opts.Status = &status
	}

	if v := c.Query("is_active"); v != "" {
		isActive, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("is_active 必须为布尔值")
		}
		opts.IsActive = &isActive
	}

	return opts, nil
}

// listToResponse 列表响应：数据 + 独立统计的总数
func (h *AppWareHandler) listToResponse(wares []*model.AppWare, total int64) gin.H {
	list := make([]gin.H, len(wares))
	for i, ware := range wares {
		list[i] = h.wareToResponse(ware)
	}
	return gin.H{
		"data":  list,
		"count": total,
	}
}

// wareToResponse 将应用仓库转换为对外的响应格式
func (h *AppWareHandler) wareToResponse(ware *model.AppWare) gin.H {
	return gin.H{
		"id":         ware.ID,
		"name":       ware.Name,
		"remark":     ware.Remark,
		"sort_order": ware.SortOrder,
		"status":     ware.Status,
		"is_active":  ware.IsActive,
		"view_count": ware.ViewCount,
		"created_at": ware.CreatedAt,
		"updated_at": ware.UpdatedAt,
		"is_deleted": ware.IsDeleted,
		"version":    ware.Version,
	}
}

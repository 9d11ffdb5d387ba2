package service

import (
	"github.com/pu-ac-cn/appware-backend/internal/model"
)

// CanMutate 判断调用者是否允许修改或删除指定的应用仓库
// 规则：超级管理员，或记录的创建者本人
// 更新和删除共用这一个判定，不在各调用处重复推导
func CanMutate(caller *model.Caller, ware *model.AppWare) bool {
	if caller == nil || ware == nil {
		return false
	}
	if caller.IsSuperuser {
		return true
	}
	return ware.CreatedBy != nil && *ware.CreatedBy == caller.ID
}

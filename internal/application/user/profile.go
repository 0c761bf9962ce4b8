package user

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/user"
)

// ProfileUseCase 当前用户信息及其能力
type ProfileUseCase struct {
	repo  user.Repository
	roles user.RoleTable
}

// NewProfileUseCase 创建用户信息用例
func NewProfileUseCase(repo user.Repository, roles user.RoleTable) *ProfileUseCase {
	return &ProfileUseCase{repo: repo, roles: roles}
}

// Execute 查询用户并展开角色对应的能力
func (uc *ProfileUseCase) Execute(ctx context.Context, userID string) (*UserInfo, error) {
	u, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u, uc.roles), nil
}

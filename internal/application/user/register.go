package user

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/user"
)

// RegisterUseCase 用户注册用例
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// Execute 注册成功后返回用户信息（不含密码）
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u, nil), nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// UserInfo 用户信息
type UserInfo struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Nickname     string   `json:"nickname"`
	Roles        []string `json:"roles"`
	Capabilities []string `json:"capabilities,omitempty"`
}

func toUserInfo(u *user.User, table user.RoleTable) *UserInfo {
	info := &UserInfo{
		ID:       u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
		Roles:    u.Roles,
	}
	for _, c := range table.Capabilities(u.Roles) {
		info.Capabilities = append(info.Capabilities, string(c))
	}
	return info
}

package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookcatalog/internal/domain/audit"
	"github.com/xiebiao/bookcatalog/internal/domain/user"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/jwt"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

const (
	ctxUserID    = "user_id"
	ctxEmail     = "email"
	ctxRoles     = "roles"
	ctxToken     = "access_token"
	ctxExpiresAt = "token_expires_at"
)

// AuthMiddleware JWT认证与能力校验
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
	roles        user.RoleTable
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore *redis.SessionStore, roles user.RoleTable) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		roles:        roles,
	}
}

// RequireAuth 要求携带有效的Bearer Token
//
//	books := v1.Group("/books")
//	books.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, apperrors.ErrUnauthorized)
			return
		}
		token := strings.TrimSpace(parts[1])

		claims, err := m.jwtManager.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		// 已登出的Token
		revoked, err := m.sessionStore.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if revoked {
			response.Abort(c, apperrors.ErrTokenExpired.WithMessage("token revoked, please log in again"))
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRoles, claims.Roles)
		c.Set(ctxToken, token)
		if claims.ExpiresAt != nil {
			c.Set(ctxExpiresAt, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// RequireCapability 要求当前用户的任一角色拥有能力capability，需放在RequireAuth之后
func (m *AuthMiddleware) RequireCapability(capability user.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			response.Abort(c, apperrors.ErrUnauthorized)
			return
		}
		if !m.roles.Grants(GetRoles(c), capability) {
			response.Abort(c, apperrors.ErrForbidden.WithMessage("missing capability "+string(capability)))
			return
		}
		c.Next()
	}
}

// GetUserID 当前登录用户ID，未登录返回空串
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetRoles 当前登录用户角色
func GetRoles(c *gin.Context) []string {
	return c.GetStringSlice(ctxRoles)
}

// GetToken 当前请求的Access Token及其过期时间
func GetToken(c *gin.Context) (string, time.Time) {
	return c.GetString(ctxToken), c.GetTime(ctxExpiresAt)
}

// Actor 审计用的操作人
func Actor(c *gin.Context) audit.Actor {
	return audit.Actor{
		UserID: GetUserID(c),
		Email:  c.GetString(ctxEmail),
		Roles:  GetRoles(c),
	}
}

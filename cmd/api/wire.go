//go:build wireinject
// +build wireinject

// 运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"

	appuser "github.com/xiebiao/bookcatalog/internal/application/user"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
)

// infrastructureSet 配置、日志、数据库、Redis
var infrastructureSet = wire.NewSet(
	config.Load,
	provideLogger,
	mysql.NewDB,
	redis.NewClient,
)

var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	provideAuditLog,
	redis.NewSessionStore,
	provideBookCache,
)

var applicationSet = wire.NewSet(
	provideRoleTable,
	provideUserService,
	provideJWTManager,
	provideCatalogService,
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewProfileUseCase,
)

var interfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	provideLoginLimiter,
	handler.NewBookHandler,
	handler.NewUserHandler,
	provideEngine,
)

// InitializeApp 组装应用，cleanup按创建的逆序释放资源
func InitializeApp() (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}

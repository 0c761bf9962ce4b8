package main

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	appuser "github.com/xiebiao/bookcatalog/internal/application/user"
	"github.com/xiebiao/bookcatalog/internal/domain/audit"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/user"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/messaging"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
	"github.com/xiebiao/bookcatalog/internal/interface/http/router"
	"github.com/xiebiao/bookcatalog/pkg/jwt"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// provideLogger 按配置创建日志器并替换全局logger
func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, cleanup, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, nil, err
	}
	restore := zap.ReplaceGlobals(l)
	return l, func() {
		restore()
		cleanup()
	}, nil
}

func provideRoleTable(cfg *config.Config) user.RoleTable {
	table := make(user.RoleTable, len(cfg.Auth.Roles))
	for role, caps := range cfg.Auth.Roles {
		for _, c := range caps {
			table[role] = append(table[role], user.Capability(c))
		}
		if _, ok := table[role]; !ok {
			table[role] = nil
		}
	}
	return table
}

func provideUserService(repo user.Repository, cfg *config.Config) user.Service {
	return user.NewService(repo, cfg.Auth.DefaultRoles, cfg.Auth.BcryptCost)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideLoginUseCase(svc user.Service, manager *jwt.Manager, sessions *redis.SessionStore, cfg *config.Config) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(svc, manager, sessions, cfg.JWT.RefreshTokenExpire)
}

func provideLoginLimiter(cfg *config.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)
}

// provideAuditLog 审计写入edits表；开启投递时再发布到RabbitMQ
func provideAuditLog(cfg *config.Config, db *gorm.DB, log *zap.Logger) (audit.Log, func(), error) {
	repo := mysql.NewAuditRepository(db)
	if !cfg.Audit.PublishEnabled {
		return repo, func() {}, nil
	}

	publisher, err := mq.NewPublisher(cfg.Audit.AMQPURL, cfg.Audit.Exchange, amqp.ExchangeTopic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("audit publisher connected", zap.String("exchange", cfg.Audit.Exchange))

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Warn("close audit publisher", zap.Error(err))
		}
	}
	return messaging.NewAuditPublisher(repo, publisher, messaging.NewBreaker("audit-publisher")), cleanup, nil
}

// provideBookCache 关闭缓存时返回nil接口
func provideBookCache(cfg *config.Config, client *goredis.Client) appbook.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	return redis.NewBookCache(client, cfg.Cache.DetailTTL)
}

func provideCatalogService(cfg *config.Config, repo book.Repository, auditLog audit.Log, cache appbook.Cache) *appbook.CatalogService {
	return appbook.NewCatalogService(repo, auditLog, appbook.Options{
		AuditTimeout:    cfg.Audit.WriteTimeout,
		Cache:           cache,
		InvalidateDelay: cfg.Cache.InvalidateDelay,
	})
}

func provideEngine(
	cfg *config.Config,
	log *zap.Logger,
	bookHandler *handler.BookHandler,
	userHandler *handler.UserHandler,
	auth *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	return router.New(cfg.Server.Mode, router.Deps{
		Logger:        log,
		Book:          bookHandler,
		User:          userHandler,
		Auth:          auth,
		LoginLimiter:  limiter,
		EnableSwagger: cfg.Server.Mode != gin.ReleaseMode,
	})
}

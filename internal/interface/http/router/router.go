package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/xiebiao/bookcatalog/docs"
	"github.com/xiebiao/bookcatalog/internal/domain/user"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
)

// Deps 路由依赖
type Deps struct {
	Logger       *zap.Logger
	Book         *handler.BookHandler
	User         *handler.UserHandler
	Auth         *middleware.AuthMiddleware
	LoginLimiter *middleware.RateLimiter
	// EnableSwagger release模式下建议关闭
	EnableSwagger bool
}

func init() {
	// 请求体中出现未知字段时报错
	binding.EnableDecoderDisallowUnknownFields = true
}

// New 创建Gin引擎并注册全部路由
func New(mode string, d Deps) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()
	r.Use(
		middleware.Tracing(),
		middleware.RequestLogger(d.Logger),
		middleware.Recovery(),
		middleware.Metrics(),
	)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", d.User.Register)
		users.POST("/login", d.LoginLimiter.Middleware(), d.User.Login)
		users.POST("/logout", d.Auth.RequireAuth(), d.User.Logout)
		users.GET("/me", d.Auth.RequireAuth(), d.User.Me)
	}

	books := v1.Group("/books")
	books.Use(d.Auth.RequireAuth())
	{
		books.GET("/list", d.Book.ListBooks)
		books.GET("/:id", d.Book.GetBook)
		books.POST("/add", d.Auth.RequireCapability(user.CanAddBook), d.Book.AddBook)
		books.PUT("/update/:id", d.Auth.RequireCapability(user.CanEditBook), d.Book.UpdateBook)
		books.DELETE("/delete/:id", d.Auth.RequireCapability(user.CanDeleteBook), d.Book.DeleteBook)
	}

	return r
}

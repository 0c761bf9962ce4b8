package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	appuser "github.com/xiebiao/bookcatalog/internal/application/user"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/user"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql/mysqltest"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
	"github.com/xiebiao/bookcatalog/internal/interface/http/middleware"
	"github.com/xiebiao/bookcatalog/internal/interface/http/router"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/jwt"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

var roles = user.RoleTable{
	"admin":    {user.CanAddBook, user.CanEditBook, user.CanDeleteBook},
	"editor":   {user.CanAddBook, user.CanEditBook},
	"customer": nil,
}

type server struct {
	engine *gin.Engine
	jwt    *jwt.Manager
	audit  *mysql.AuditRepository
}

func newServer(t *testing.T) *server {
	t.Helper()
	return newServerWithRepo(t, nil)
}

// newServerWithRepo wrap非nil时包装图书存储，用于注入存储故障
func newServerWithRepo(t *testing.T, wrap func(book.Repository) book.Repository) *server {
	t.Helper()

	db := mysqltest.NewDB(t)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := redis.NewSessionStore(client)
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	userRepo := mysql.NewUserRepository(db)
	userSvc := user.NewService(userRepo, []string{"customer"}, bcrypt.MinCost)
	auditRepo := mysql.NewAuditRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	if wrap != nil {
		bookRepo = wrap(bookRepo)
	}
	catalog := appbook.NewCatalogService(bookRepo, auditRepo, appbook.Options{
		Cache: redis.NewBookCache(client, time.Minute),
	})

	engine := router.New(gin.TestMode, router.Deps{
		Logger: zap.NewNop(),
		Book:   handler.NewBookHandler(catalog),
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userSvc),
			appuser.NewLoginUseCase(userSvc, manager, sessions, 24*time.Hour),
			appuser.NewLogoutUseCase(sessions),
			appuser.NewProfileUseCase(userRepo, roles),
		),
		Auth:         middleware.NewAuthMiddleware(manager, sessions, roles),
		LoginLimiter: middleware.NewRateLimiter(1, 3),
	})
	return &server{engine: engine, jwt: manager, audit: auditRepo}
}

func (s *server) token(t *testing.T, roles ...string) string {
	t.Helper()
	pair, err := s.jwt.GenerateToken("u-"+roles[0], roles[0]+"@example.com", roles)
	require.NoError(t, err)
	return pair.AccessToken
}

func (s *server) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const validBook = `{
	"isbn": "978-0451524935",
	"title": "1984",
	"author": "George Orwell",
	"genre": "Dystopian",
	"publication_year": "1949",
	"price": 9.99,
	"description": "A dystopian novel"
}`

func (s *server) addBook(t *testing.T, token string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/books/add", token, validBook)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[response.MessageBody](t, w)
	require.NotEmpty(t, body.ID)
	assert.Equal(t, "Book 1984 added with an id of "+body.ID, body.Message)
	return body.ID
}

func TestBookLifecycle(t *testing.T) {
	s := newServer(t)
	admin := s.token(t, "admin")

	id := s.addBook(t, admin)

	w := s.do(t, http.MethodGet, "/api/v1/books/"+id, admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct{ Book book.Book }](t, w)
	assert.Equal(t, 1949, got.Book.PublicationYear, "数字字符串被转换")
	assert.Equal(t, 9.99, got.Book.Price)

	w = s.do(t, http.MethodPut, "/api/v1/books/update/"+id, admin, `{"price": "12.50"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Book "+id+" is updated", decode[response.MessageBody](t, w).Message)

	w = s.do(t, http.MethodGet, "/api/v1/books/list?minPrice=10&maxPrice=20", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]book.Book](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, 12.5, list[0].Price)

	w = s.do(t, http.MethodDelete, "/api/v1/books/delete/"+id, admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Book "+id+" deleted", decode[response.MessageBody](t, w).Message)

	w = s.do(t, http.MethodDelete, "/api/v1/books/delete/"+id, admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Book "+id+" not deleted", decode[response.ErrorBody](t, w).Message)

	w = s.do(t, http.MethodGet, "/api/v1/books/"+id, admin, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book "+id+" not found", decode[response.ErrorBody](t, w).Message)

	n, err := s.audit.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

type failingInsert struct {
	book.Repository
	err error
}

func (r failingInsert) Insert(context.Context, *book.Book) (string, error) {
	return "", r.err
}

func TestAddBookStoreFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"存储错误", apperrors.Persistence(errors.New("dial tcp: connection refused"), "failed to add book"), http.StatusInternalServerError, "failed to add book"},
		{"未写入", book.ErrBookNotModified, http.StatusBadRequest, "Book 1984 not added"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServerWithRepo(t, func(r book.Repository) book.Repository {
				return failingInsert{Repository: r, err: tt.err}
			})

			w := s.do(t, http.MethodPost, "/api/v1/books/add", s.token(t, "admin"), validBook)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			body := decode[response.ErrorBody](t, w)
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, w.Body.String(), "connection refused", "内部错误不返回给客户端")

			n, err := s.audit.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestListDefaultsAndEmpty(t *testing.T) {
	s := newServer(t)
	admin := s.token(t, "admin")

	w := s.do(t, http.MethodGet, "/api/v1/books/list", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	s.addBook(t, admin)
	w = s.do(t, http.MethodGet, "/api/v1/books/list?minPrice=abc&sortBy=bogus&genre=", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]book.Book](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/v1/books/list?minPrice=20&maxPrice=5", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]book.Book](t, w))
}

func TestAuthAndCapabilities(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/books/list", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/books/list", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	customer := s.token(t, "customer")
	w = s.do(t, http.MethodGet, "/api/v1/books/list", customer, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/books/add", customer, validBook)
	assert.Equal(t, http.StatusForbidden, w.Code)

	editor := s.token(t, "editor")
	id := s.addBook(t, editor)
	w = s.do(t, http.MethodDelete, "/api/v1/books/delete/"+id, editor, "")
	assert.Equal(t, http.StatusForbidden, w.Code, "editor没有删除能力")

	n, err := s.audit.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBodyValidation(t *testing.T) {
	s := newServer(t)
	admin := s.token(t, "admin")
	id := s.addBook(t, admin)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"未知字段", http.MethodPost, "/api/v1/books/add", `{"isbn":"978-0451524935","title":"t","author":"a","genre":"Fiction","publication_year":2000,"price":1,"description":"d","stock":3}`, http.StatusBadRequest},
		{"缺少字段", http.MethodPost, "/api/v1/books/add", `{"title":"t"}`, http.StatusBadRequest},
		{"非法类型", http.MethodPost, "/api/v1/books/add", `{"isbn":"978-0451524935","title":"t","author":"a","genre":"Poetry","publication_year":2000,"price":1,"description":"d"}`, http.StatusBadRequest},
		{"年份越界", http.MethodPost, "/api/v1/books/add", `{"isbn":"978-0451524935","title":"t","author":"a","genre":"Fiction","publication_year":2024,"price":1,"description":"d"}`, http.StatusBadRequest},
		{"ISBN过长", http.MethodPost, "/api/v1/books/add", `{"isbn":"978-04515249359780451524935978045","title":"t","author":"a","genre":"Fiction","publication_year":2000,"price":1,"description":"d"}`, http.StatusBadRequest},
		{"更新ISBN过长", http.MethodPut, "/api/v1/books/update/" + id, `{"isbn":"978-04515249359780451524935978045"}`, http.StatusBadRequest},
		{"ISBN过短", http.MethodPost, "/api/v1/books/add", `{"isbn":"123","title":"t","author":"a","genre":"Fiction","publication_year":2000,"price":1,"description":"d"}`, http.StatusBadRequest},
		{"价格非数字", http.MethodPut, "/api/v1/books/update/" + id, `{"price":"cheap"}`, http.StatusBadRequest},
		{"空更新", http.MethodPut, "/api/v1/books/update/" + id, `{}`, http.StatusBadRequest},
		{"空白标题", http.MethodPut, "/api/v1/books/update/" + id, `{"title":"   "}`, http.StatusBadRequest},
		{"ID格式错误", http.MethodPut, "/api/v1/books/update/42", `{"title":"x"}`, http.StatusNotFound},
		{"删除ID格式错误", http.MethodDelete, "/api/v1/books/delete/42", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, admin, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			body := decode[response.ErrorBody](t, w)
			assert.NotZero(t, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}

	n, err := s.audit.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "失败的写操作不记审计")
}

func TestBodyErrorsAreSanitized(t *testing.T) {
	s := newServer(t)
	admin := s.token(t, "admin")

	w := s.do(t, http.MethodPost, "/api/v1/books/add", admin, `{"isbn":"978-0451524935","title":"t","author":"a","genre":"Fiction","publication_year":2000,"price":1,"description":"d","stock":3}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `unknown field "stock"`, decode[response.ErrorBody](t, w).Message)

	w = s.do(t, http.MethodPost, "/api/v1/books/add", admin, `{"isbn": }`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[response.ErrorBody](t, w)
	assert.Equal(t, apperrors.ErrCodeBindError, body.Code)
	assert.Equal(t, apperrors.ErrBindError.Message, body.Message)
}

func TestUserFlow(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/users/register", "", `{"email":"reader@example.com","password":"secret123","nickname":"reader"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/users/register", "", `{"email":"reader@example.com","password":"secret123","nickname":"reader"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/users/login", "", `{"email":"reader@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[appuser.LoginResponse](t, w)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", login.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[appuser.UserInfo](t, w)
	assert.Equal(t, []string{"customer"}, me.Roles)

	w = s.do(t, http.MethodPost, "/api/v1/users/logout", login.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/users/me", login.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "登出后Token失效")

	w = s.do(t, http.MethodGet, "/api/v1/books/list", login.RefreshToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "Refresh Token不能访问接口")
}

func TestRefreshTokenRejected(t *testing.T) {
	s := newServer(t)
	pair, err := s.jwt.GenerateToken("u-admin", "admin@example.com", []string{"admin"})
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/v1/books/list", pair.RefreshToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/books/add", pair.RefreshToken, validBook)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/books/list", pair.AccessToken, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRateLimit(t *testing.T) {
	s := newServer(t)

	var last int
	for i := 0; i < 4; i++ {
		w := s.do(t, http.MethodPost, "/api/v1/users/login", "", `{"email":"nobody@example.com","password":"secret123"}`)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestOpsRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

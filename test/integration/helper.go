package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookcatalog/pkg/jwt"
)

// 集成测试访问一个已启动的服务（docker compose或本地go run ./cmd/api）
// 服务不可达时跳过

const Timeout = 10 * time.Second

func serverURL() string {
	if u := os.Getenv("BOOKSTORE_TEST_SERVER"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

// BaseURL API基础URL
func BaseURL() string {
	return serverURL() + "/api/v1"
}

func requireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(serverURL() + "/ping")
	if err != nil {
		t.Skipf("服务未启动，跳过集成测试: %v", err)
	}
	_ = resp.Body.Close()
}

// Result 响应状态码和原始JSON
type Result struct {
	Status int
	Body   []byte
}

// Decode 解析响应体
func (r *Result) Decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), "解析JSON响应失败: %s", string(r.Body))
}

// Message 错误或消息响应中的message字段
func (r *Result) Message(t *testing.T) string {
	var body struct {
		Message string `json:"message"`
	}
	r.Decode(t, &body)
	return body.Message
}

// Do 发送请求，data非nil时以JSON发送
func Do(t *testing.T, method, url string, data interface{}, token string) *Result {
	t.Helper()

	var body io.Reader
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")
	return &Result{Status: resp.StatusCode, Body: raw}
}

// GenerateTestEmail 生成唯一的测试邮箱
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestISBN 生成唯一的14位测试ISBN
func GenerateTestISBN() string {
	return fmt.Sprintf("978-%010d", time.Now().UnixNano()%10000000000)
}

// RegisterTestUser 注册并登录，返回Access Token
func RegisterTestUser(t *testing.T, nickname string) (email, token string) {
	t.Helper()
	email = GenerateTestEmail(nickname)

	res := Do(t, http.MethodPost, BaseURL()+"/users/register", map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}, "")
	require.Equal(t, http.StatusOK, res.Status, "注册失败: %s", res.Body)

	res = Do(t, http.MethodPost, BaseURL()+"/users/login", map[string]string{
		"email":    email,
		"password": "Test1234",
	}, "")
	require.Equal(t, http.StatusOK, res.Status, "登录失败: %s", res.Body)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	res.Decode(t, &login)
	return email, login.AccessToken
}

// AdminToken 用服务的JWT密钥直接签发admin Token（注册用户只有默认角色）
func AdminToken(t *testing.T) string {
	t.Helper()
	secret := os.Getenv("BOOKSTORE_JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key-change-in-production"
	}
	pair, err := jwt.NewManager(secret, time.Hour, time.Hour).
		GenerateToken("integration-admin", "admin@test.com", []string{"admin"})
	require.NoError(t, err)
	return pair.AccessToken
}

// AddTestBook 新增图书并返回ID
func AddTestBook(t *testing.T, token, title string, price float64) string {
	t.Helper()
	res := Do(t, http.MethodPost, BaseURL()+"/books/add", map[string]interface{}{
		"isbn":             GenerateTestISBN(),
		"title":            title,
		"author":           "Integration Author",
		"genre":            "Fiction",
		"publication_year": 2001,
		"price":            price,
		"description":      "集成测试用图书",
	}, token)
	require.Equal(t, http.StatusOK, res.Status, "新增图书失败: %s", res.Body)

	var body struct {
		ID string `json:"id"`
	}
	res.Decode(t, &body)
	require.NotEmpty(t, body.ID)
	return body.ID
}

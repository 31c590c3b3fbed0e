package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/logging"
	"github.com/stretchr/testify/assert"
)

// ---------------- Helper ----------------

func newTestLogger() logging.Logger {
	builder := logging.NewLoggingBuilder()
	builder.AddConsole(logging.ConsoleLoggerOptions{
		Output:    os.Stdout,
		Formatter: &logging.TextFormatter{TimeFormat: "15:04:05", Colorize: false},
	})
	factory := builder.Build()
	return factory.CreateLogger("test")
}

// ---------------- Mock Controllers ----------------

// SimpleController 普通控制器
type SimpleController struct {
	Check string
}

func (c *SimpleController) RegisterRoutes(router gin.IRouter) {
	router.GET("/simple", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "simple")
	})
}

// DepService 模拟依赖服务
type DepService struct {
	Value string
}

// ControllerWithTag 带 Tag 的控制器 (字段注入)
type ControllerWithTag struct {
	Svc *DepService `di:""`
}

func (c *ControllerWithTag) RegisterRoutes(router gin.IRouter) {
	router.GET("/tag", func(ctx *gin.Context) {
		// 如果 Svc 未注入，这里会 panic，测试框架会捕获
		ctx.String(http.StatusOK, "tag:"+c.Svc.Value)
	})
}

// NamedController 通过 ref 注入命名依赖的控制器
type NamedController struct {
	Svc *DepService `di:"special"`
}

func (c *NamedController) RegisterRoutes(router gin.IRouter) {
	router.GET("/named", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "named:"+c.Svc.Value)
	})
}

// ---------------- Tests ----------------

func TestWebBuilder_AddControllers(t *testing.T) {
	// 1. Setup Environment
	logger := newTestLogger()
	container := di.NewContainer()

	// 注册依赖服务
	// 同类型重复注册按后写覆盖，命名实例先注册，未命名实例承担按类型装配
	di.RegisterValue[*DepService](container,
		&DepService{Value: "special-value"},
		di.WithName("special"),
		di.WithCandidate(false))
	di.RegisterValue[*DepService](container, &DepService{Value: "injected-value"})

	// 2. Create Builder & Add Controllers
	builder := NewBuilder(logger)

	// 方式 A: 原型实例 (带 Tag)
	builder.AddControllers(&ControllerWithTag{})

	// 方式 B: 原型实例 (无依赖)
	builder.AddControllers(&SimpleController{})

	// 方式 C: 泛型语法糖 (命名引用)
	AddController[*NamedController](builder)

	// 3. Build Host
	// 这里会把控制器定义注册到容器
	host := builder.Build(container)

	// 4. Map Controllers (通常在 Start 中调用，这里手动调用以测试)
	// 这会触发 Get 和 RegisterRoutes
	err := host.mapControllers()
	assert.NoError(t, err)

	// 5. Verify Routes using httptest
	router := host.engine

	// Case 1: Simple
	w1 := httptest.NewRecorder()
	req1, _ := http.NewRequest("GET", "/simple", nil)
	router.ServeHTTP(w1, req1)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "simple", w1.Body.String())

	// Case 2: Dependency Injection (Tag)
	w2 := httptest.NewRecorder()
	req2, _ := http.NewRequest("GET", "/tag", nil)
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "tag:injected-value", w2.Body.String())

	// Case 3: Named reference
	w3 := httptest.NewRecorder()
	req3, _ := http.NewRequest("GET", "/named", nil)
	router.ServeHTTP(w3, req3)
	assert.Equal(t, http.StatusOK, w3.Code)
	assert.Equal(t, "named:special-value", w3.Body.String())
}

func TestWebBuilder_DuplicateRegistration(t *testing.T) {
	logger := newTestLogger()
	container := di.NewContainer()
	builder := NewBuilder(logger)

	// 故意添加两次相同的控制器
	builder.AddControllers(&SimpleController{})
	builder.AddControllers(&SimpleController{})

	// Build 不应 panic，重复定义按后写覆盖处理
	host := builder.Build(container)

	assert.NotEmpty(t, host.controllerTypes)
	assert.NoError(t, host.mapControllers())
}

func TestWebBuilder_UnresolvableController(t *testing.T) {
	logger := newTestLogger()
	container := di.NewContainer()
	builder := NewBuilder(logger)

	// ControllerWithTag 依赖 *DepService，但容器里没有注册
	builder.AddControllers(&ControllerWithTag{})

	host := builder.Build(container)
	err := host.mapControllers()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ControllerWithTag")
}

package database_test

import (
	"testing"

	"github.com/gocrud/ioc/config"
	"github.com/gocrud/ioc/configure/database"
	"github.com/gocrud/ioc/core"
	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/logging"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name string
}

type MockDBService struct {
	Master *gorm.DB `di:"master"`
}

// DBConfig 模拟用户定义的配置结构
type DBConfig struct {
	DSN          string `json:"dsn"`
	MaxOpenConns int    `json:"max_open_conns"`
}

func TestDatabaseConfiguration(t *testing.T) {
	builder := core.NewApplicationBuilder()

	// 1. 配置内存配置源
	builder.ConfigureConfiguration(func(cb *config.ConfigurationBuilder) {
		cb.AddInMemory(map[string]any{
			"db": map[string]any{
				"master": map[string]any{
					"dsn":            "file::memory:?cache=shared",
					"max_open_conns": 5,
				},
			},
		})
	})

	// 2. 配置 Database (演示 config.Load 的使用)
	configurator := database.Configure(func(b *database.Builder) {
		// 使用 config.Load 从 Context 获取强类型配置
		dbConf, err := config.Load[DBConfig](b.ConfigContext().GetConfiguration(), "db.master")
		if err != nil {
			// 在实际应用中可能 panic 或记录错误，这里简化处理
			b.Add("config_error", nil, nil) // 触发 builder 错误
			return
		}

		b.Add("master", sqlite.Open(dbConf.DSN), func(o *database.DatabaseOptions) {
			o.MaxOpenConns = dbConf.MaxOpenConns
			o.AutoMigrate = []any{&User{}}
		})
	})

	builder.Configure(func(ctx *core.BuildContext) {
		configurator(ctx)
	})

	// Register Mock Service
	builder.Configure(func(ctx *core.BuildContext) {
		di.Register[*MockDBService](ctx.Container())
	})

	app := builder.Build()

	// Resolve Service
	var svc *MockDBService
	app.GetService(&svc)

	if svc.Master == nil {
		t.Fatal("Master DB should not be nil")
	}

	// Verify config was applied
	sqlDB, _ := svc.Master.DB()
	stats := sqlDB.Stats()
	if stats.MaxOpenConnections != 5 {
		t.Errorf("Expected MaxOpenConns 5, got %d", stats.MaxOpenConnections)
	}

	// Test DB interaction
	if err := svc.Master.Create(&User{Name: "test"}).Error; err != nil {
		t.Fatalf("Failed to insert record: %v", err)
	}

	// Factory 本身也注册进了容器
	var factory *database.DatabaseFactory
	app.GetService(&factory)
	if db, err := factory.Get("master"); err != nil || db != svc.Master {
		t.Errorf("factory should hand out the same master connection, err=%v", err)
	}
	if _, err := factory.Get("slave"); err == nil {
		t.Error("unknown connection name should not resolve")
	}
}

func TestDatabaseBuilder_Errors(t *testing.T) {
	logger := logging.NewLogger("test")
	// Add 不依赖 BuildContext，传 nil 做隔离测试
	builder := database.NewBuilder(nil)

	// Missing dialector
	builder.Add("invalid", nil, nil)

	// Duplicate
	builder.Add("dup", sqlite.Open("a"), nil)
	builder.Add("dup", sqlite.Open("b"), nil)

	_, err := builder.Build(logger)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	t.Logf("Got expected error: %v", err)
}

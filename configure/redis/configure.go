package redis

import (
	"github.com/gocrud/ioc/core"
	"github.com/gocrud/ioc/logging"
)

// Configure 返回 Redis 配置器
// 使用示例: builder.Configure(redis.Configure(func(b *redis.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder()
		if options != nil {
			options(builder)
		}

		factory, err := builder.Build(ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build redis clients",
				logging.Field{Key: "error", Value: err.Error()})
		}

		if factory != nil {
			factory.RegisterTo(ctx.Container(), ctx.GetLogger())

			ctx.SetCleanup("redis", func() {
				ctx.GetLogger().Info("Closing redis clients")
				if err := factory.Close(); err != nil {
					ctx.GetLogger().Error("Failed to close redis clients",
						logging.Field{Key: "error", Value: err.Error()})
				}
			})
		}
	}
}

package etcd

import (
	"github.com/gocrud/ioc/core"
	"github.com/gocrud/ioc/logging"
)

// Configure 返回 Etcd 配置器
// 使用示例: builder.Configure(etcd.Configure(func(b *etcd.Builder) { ... }))
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder(ctx)
		if options != nil {
			options(builder)
		}

		factory, err := builder.Build(ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build etcd clients",
				logging.Field{Key: "error", Value: err.Error()})
		}

		if factory != nil {
			factory.RegisterTo(ctx.Container(), ctx.GetLogger())

			ctx.SetCleanup("etcd", func() {
				ctx.GetLogger().Info("Closing etcd clients")
				if err := factory.Close(); err != nil {
					ctx.GetLogger().Error("Failed to close etcd clients",
						logging.Field{Key: "error", Value: err.Error()})
				}
			})
		}
	}
}

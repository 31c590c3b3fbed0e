package database

import (
	"github.com/gocrud/ioc/core"
	"github.com/gocrud/ioc/logging"
)

// Configure 返回数据库配置器
func Configure(options func(*Builder)) core.Configurator {
	return func(ctx *core.BuildContext) {
		builder := NewBuilder(ctx)
		if options != nil {
			options(builder)
		}

		factory, err := builder.Build(ctx.GetLogger())
		if err != nil {
			ctx.GetLogger().Fatal("Failed to build databases",
				logging.Field{Key: "error", Value: err.Error()})
		}

		if factory != nil {
			factory.RegisterTo(ctx.Container(), ctx.GetLogger())

			ctx.SetCleanup("database", func() {
				ctx.GetLogger().Info("Closing database connections")
				if err := factory.Close(); err != nil {
					ctx.GetLogger().Error("Failed to close databases",
						logging.Field{Key: "error", Value: err.Error()})
				}
			})
		}
	}
}

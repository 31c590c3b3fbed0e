package core

import (
	"strings"
	"testing"
)

// 扩展夹具：分别覆盖两个配置阶段的接口组合

// metricsExtension 只注册服务
type metricsExtension struct {
	configured bool
}

func (e *metricsExtension) Name() string { return "Metrics" }

func (e *metricsExtension) ConfigureServices(*ServiceCollection) { e.configured = true }

// schedulerExtension 只参与构建阶段
type schedulerExtension struct {
	built bool
}

func (e *schedulerExtension) Name() string { return "Scheduler" }

func (e *schedulerExtension) ConfigureBuilder(*BuildContext) { e.built = true }

// storageExtension 两个阶段都参与
type storageExtension struct{}

func (e *storageExtension) Name() string { return "Storage" }

func (e *storageExtension) ConfigureServices(*ServiceCollection) {}

func (e *storageExtension) ConfigureBuilder(*BuildContext) {}

// bareExtension 未实现任何可识别的配置接口
type bareExtension struct{}

func (e *bareExtension) Name() string { return "Bare" }

func TestAddExtension_RejectsBareExtension(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for an extension without configurator interfaces")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "Extension 'Bare' does not implement any supported interfaces") {
			t.Errorf("panic message should name the extension, got: %v", r)
		}
	}()

	NewApplicationBuilder().AddExtension(&bareExtension{})
}

func TestAddExtension_RegistersConfigurators(t *testing.T) {
	cases := []struct {
		name         string
		ext          Extension
		wantServices int
		wantApp      int
	}{
		{"services only", &metricsExtension{}, 1, 0},
		{"app only", &schedulerExtension{}, 0, 1},
		{"both phases", &storageExtension{}, 1, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			builder := NewApplicationBuilder()
			builder.AddExtension(tc.ext)

			if got := len(builder.serviceConfigurators); got != tc.wantServices {
				t.Errorf("expected %d service configurators, got %d", tc.wantServices, got)
			}
			if got := len(builder.configurators); got != tc.wantApp {
				t.Errorf("expected %d app configurators, got %d", tc.wantApp, got)
			}
		})
	}
}

func TestAddExtension_Accumulates(t *testing.T) {
	builder := NewApplicationBuilder()
	builder.AddExtension(&metricsExtension{})
	builder.AddExtension(&schedulerExtension{})
	builder.AddExtension(&storageExtension{})

	if got := len(builder.serviceConfigurators); got != 2 {
		t.Errorf("expected 2 service configurators, got %d", got)
	}
	if got := len(builder.configurators); got != 2 {
		t.Errorf("expected 2 app configurators, got %d", got)
	}
}

func TestAddExtension_RunsDuringBuild(t *testing.T) {
	metrics := &metricsExtension{}
	scheduler := &schedulerExtension{}

	builder := NewApplicationBuilder()
	builder.AddExtension(metrics)
	builder.AddExtension(scheduler)
	builder.Build()

	if !metrics.configured {
		t.Error("ConfigureServices was not invoked during Build")
	}
	if !scheduler.built {
		t.Error("ConfigureBuilder was not invoked during Build")
	}
}

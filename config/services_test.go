package config

import (
	"strings"
	"testing"

	"github.com/gocrud/ioc/di"
)

type declaredRepo struct{}

type declaredAudit struct{}

type declaredService struct {
	Repo *declaredRepo `di:""`

	audit *declaredAudit
}

func (s *declaredService) SetAudit(a *declaredAudit) { s.audit = a }

func newServiceRegistry() *di.TypeRegistry {
	registry := di.NewTypeRegistry()
	di.RegisterType[*declaredRepo](registry, "repo")
	di.RegisterType[*declaredService](registry, "service")
	return registry
}

func configOf(t *testing.T, data map[string]any) Configuration {
	t.Helper()
	cfg, err := NewConfigurationBuilder().AddInMemory(data).Build()
	if err != nil {
		t.Fatalf("failed to build configuration: %v", err)
	}
	return cfg
}

func TestRegisterServices(t *testing.T) {
	cfg := configOf(t, map[string]any{
		"services": []any{
			map[string]any{"concrete": "repo", "name": "primary"},
			map[string]any{
				"concrete": "service",
				"mutators": []any{map[string]any{"name": "SetAudit"}},
			},
		},
	})

	container := di.NewContainer()
	di.RegisterValue[*declaredAudit](container, &declaredAudit{})

	if err := RegisterServices(cfg, newServiceRegistry(), container); err != nil {
		t.Fatalf("RegisterServices failed: %v", err)
	}

	svc, err := di.Resolve[*declaredService](container)
	if err != nil {
		t.Fatalf("failed to resolve declared service: %v", err)
	}
	if svc.Repo == nil {
		t.Error("constructor dependency should be autowired")
	}
	if svc.audit == nil {
		t.Error("mutator with inferred type should be applied")
	}

	// 命名声明可按名称解析
	if _, err := di.ResolveByName[*declaredRepo](container, "primary"); err != nil {
		t.Errorf("failed to resolve named service: %v", err)
	}
}

func TestRegisterServices_NoSection(t *testing.T) {
	cfg := configOf(t, map[string]any{"app": map[string]any{"name": "demo"}})

	container := di.NewContainer()
	if err := RegisterServices(cfg, newServiceRegistry(), container); err != nil {
		t.Fatalf("missing services section should be a no-op, got %v", err)
	}

	if _, err := di.Resolve[*declaredRepo](container); err == nil {
		t.Error("nothing should have been registered")
	}
}

func TestRegisterServices_UnknownType(t *testing.T) {
	cfg := configOf(t, map[string]any{
		"services": []any{
			map[string]any{"concrete": "nope"},
		},
	})

	err := RegisterServices(cfg, newServiceRegistry(), di.NewContainer())
	if err == nil {
		t.Fatal("expected error for unregistered type name")
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Errorf("error should name the unknown type, got %v", err)
	}
}

func TestRegisterServices_AutowireFlags(t *testing.T) {
	// 显式空列表关闭全部装配能力
	cfg := configOf(t, map[string]any{
		"services": []any{
			map[string]any{"concrete": "repo"},
			map[string]any{"concrete": "service", "autowire": []any{}},
		},
	})

	container := di.NewContainer()
	if err := RegisterServices(cfg, newServiceRegistry(), container); err != nil {
		t.Fatalf("RegisterServices failed: %v", err)
	}

	if _, err := di.Resolve[*declaredService](container); err == nil {
		t.Error("autowiring is off, required dependency should fail")
	}

	// 未知标记在装载期报错
	cfg = configOf(t, map[string]any{
		"services": []any{
			map[string]any{"concrete": "service", "autowire": []any{"bogus"}},
		},
	})
	if err := RegisterServices(cfg, newServiceRegistry(), di.NewContainer()); err == nil {
		t.Error("unknown autowire flag should be rejected")
	}
}

func TestRegisterServices_Candidate(t *testing.T) {
	cfg := configOf(t, map[string]any{
		"services": []any{
			map[string]any{"concrete": "repo", "name": "hidden", "candidate": false},
			map[string]any{"concrete": "service"},
		},
	})

	container := di.NewContainer()
	if err := RegisterServices(cfg, newServiceRegistry(), container); err != nil {
		t.Fatalf("RegisterServices failed: %v", err)
	}

	// 非候选定义不参与自动装配，但仍可按名称获取
	if _, err := di.Resolve[*declaredService](container); err == nil {
		t.Error("excluded definition should not satisfy autowiring")
	}
	if _, err := di.ResolveByName[*declaredRepo](container, "hidden"); err != nil {
		t.Errorf("named lookup should bypass the candidate gate: %v", err)
	}
}

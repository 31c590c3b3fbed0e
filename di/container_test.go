package di_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gocrud/ioc/di"
)

// 测试夹具

type Repo struct {
	ID int
}

type Service struct {
	Repo *Repo `di:""`
}

type Notifier struct {
	Events []string
}

type Widget struct {
	repo     *Repo
	notifier *Notifier
}

func (w *Widget) SetRepo(r *Repo) { w.repo = r }

func (w *Widget) SetNotifier(n *Notifier) { w.notifier = n }

type Store interface {
	Kind() string
}

type memStore struct{}

func (memStore) Kind() string { return "memory" }

type storeConsumer struct {
	Store Store `di:""`
}

type badTagHolder struct {
	Repo *Repo `di:"backup,?"`
}

func TestContainer_ValueDefinition(t *testing.T) {
	c := di.NewContainer()

	repo := &Repo{ID: 42}
	di.RegisterValue[*Repo](c, repo)

	got, err := di.Resolve[*Repo](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != repo {
		t.Error("value definition should return the registered instance")
	}

	// 值定义每次解析都返回同一个实例
	again, _ := di.Resolve[*Repo](c)
	if again != repo {
		t.Error("value definition should be stable across resolutions")
	}
}

func TestContainer_NoInstanceCaching(t *testing.T) {
	c := di.NewContainer()

	di.Register[*Repo](c)
	di.Register[*Service](c)

	first, err := di.Resolve[*Service](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := di.Resolve[*Service](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 容器不缓存自己构造的实例
	if first == second {
		t.Error("each Get should construct a fresh instance")
	}
	if first.Repo == nil || second.Repo == nil {
		t.Fatal("dependency should be injected")
	}
	if first.Repo == second.Repo {
		t.Error("dependencies should also be constructed fresh")
	}
}

func TestContainer_GetByName(t *testing.T) {
	c := di.NewContainer()

	repo := &Repo{ID: 1}
	di.RegisterValue[*Repo](c, repo, di.WithName("primary"))

	got, err := di.ResolveByName[*Repo](c, "primary")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != repo {
		t.Error("named resolution should return the registered instance")
	}

	_, err = c.GetByName("unknown")
	var missing *di.DefinitionMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected DefinitionMissingError, got %v", err)
	}
	if missing.Name != "unknown" {
		t.Errorf("error should carry the missing name, got %q", missing.Name)
	}
}

func TestContainer_MissingDefinition(t *testing.T) {
	c := di.NewContainer()

	_, err := di.Resolve[*Service](c)
	var missing *di.DefinitionMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected DefinitionMissingError, got %v", err)
	}
	if missing.Type != di.TypeOf[*Service]() {
		t.Errorf("error should carry the missing type, got %v", missing.Type)
	}
}

// countingReflector 包装默认内省实现并统计调用次数
type countingReflector struct {
	inner di.TypeReflector
	calls map[reflect.Type]int
}

func (r *countingReflector) DescribeConstructor(typ reflect.Type) ([]di.ParameterSpec, error) {
	r.calls[typ]++
	return r.inner.DescribeConstructor(typ)
}

func TestContainer_Discovery(t *testing.T) {
	reflector := &countingReflector{
		inner: di.NewStructReflector(),
		calls: make(map[reflect.Type]int),
	}
	c := di.NewContainer(di.WithDiscovery(), di.WithReflector(reflector))

	// 未注册任何定义，完全依赖发现
	svc, err := di.Resolve[*Service](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Repo == nil {
		t.Fatal("discovered dependency should be injected")
	}

	// 发现结果已入仓库，再次解析不应重新内省
	if _, err := di.Resolve[*Service](c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := reflector.calls[di.TypeOf[*Service]()]; got != 1 {
		t.Errorf("expected exactly one introspection of *Service, got %d", got)
	}
	if got := reflector.calls[di.TypeOf[*Repo]()]; got != 1 {
		t.Errorf("expected exactly one introspection of *Repo, got %d", got)
	}
}

func TestContainer_DiscoveryDisabled(t *testing.T) {
	c := di.NewContainer()

	_, err := di.Resolve[*Repo](c)
	if err == nil {
		t.Fatal("expected error when discovery is disabled")
	}
}

func TestContainer_Inject(t *testing.T) {
	c := di.NewContainer()

	repo := &Repo{ID: 9}
	di.RegisterValue[*Repo](c, repo)
	di.Register[*Widget](c, di.WithMutators(
		di.MutatorConfig{Name: "SetRepo", Type: di.TypeOf[*Repo]()},
	))

	// Inject 只执行 Mutator 注入，不重新构造实例
	w := &Widget{}
	if err := c.Inject(w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.repo != repo {
		t.Error("mutator should inject the registered repo")
	}
}

func TestContainer_InjectRespectsAutowire(t *testing.T) {
	c := di.NewContainer()

	di.RegisterValue[*Repo](c, &Repo{})
	di.Register[*Widget](c,
		di.WithAutowire(di.AutowireSet{Constructor: true}),
		di.WithMutators(di.MutatorConfig{Name: "SetRepo", Type: di.TypeOf[*Repo]()}),
	)

	w := &Widget{}
	if err := c.Inject(w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.repo != nil {
		t.Error("mutator injection is disabled for this definition")
	}
}

func TestContainer_InterfaceValue(t *testing.T) {
	c := di.NewContainer()

	di.RegisterValue[Store](c, memStore{})
	di.Register[*storeConsumer](c)

	svc, err := di.Resolve[*storeConsumer](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Store == nil || svc.Store.Kind() != "memory" {
		t.Error("interface-typed value should be injected by declared type")
	}
}

func TestContainer_AddRejectsInvalidConfig(t *testing.T) {
	c := di.NewContainer()

	cases := []struct {
		name string
		cfg  di.DefinitionConfig
	}{
		{
			name: "no concrete type",
			cfg:  di.DefinitionConfig{},
		},
		{
			name: "non-struct concrete",
			cfg:  di.DefinitionConfig{Concrete: di.TypeOf[int]()},
		},
		{
			name: "value with parameters",
			cfg: di.DefinitionConfig{
				Concrete:   di.TypeOf[*Repo](),
				Value:      &Repo{},
				Parameters: []di.ParameterConfig{{}},
			},
		},
		{
			name: "value not assignable",
			cfg: di.DefinitionConfig{
				Concrete: di.TypeOf[Store](),
				Value:    42,
			},
		},
		{
			name: "multi-segment di tag",
			cfg:  di.DefinitionConfig{Concrete: di.TypeOf[*badTagHolder]()},
		},
		{
			name: "parameter count mismatch",
			cfg: di.DefinitionConfig{
				Concrete:   di.TypeOf[*Service](),
				Parameters: []di.ParameterConfig{{}, {}},
			},
		},
		{
			name: "unknown mutator method",
			cfg: di.DefinitionConfig{
				Concrete: di.TypeOf[*Widget](),
				Mutators: []di.MutatorConfig{{Name: "SetMissing", Type: di.TypeOf[*Repo]()}},
			},
		},
		{
			name: "mutator argument mismatch",
			cfg: di.DefinitionConfig{
				Concrete: di.TypeOf[*Widget](),
				Mutators: []di.MutatorConfig{{Name: "SetRepo", Type: di.TypeOf[*Notifier]()}},
			},
		},
	}

	for _, tc := range cases {
		if err := c.Add(tc.cfg); err == nil {
			t.Errorf("%s: expected Add to reject the config", tc.name)
		}
	}
}

func TestRegister_PanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register should panic on invalid config")
		}
	}()
	di.Register[int](di.NewContainer())
}

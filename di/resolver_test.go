package di_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gocrud/ioc/di"
)

type primaryHolder struct {
	Repo *Repo `di:"primary"`
}

type backupHolder struct {
	Repo *Repo `di:"backup"`
}

type optionalTypeHolder struct {
	Repo *Repo `di:"?"`
}

type cycleA struct {
	B *cycleB `di:""`
}

type cycleB struct {
	A *cycleA `di:""`
}

type selfRef struct {
	Self *selfRef `di:""`
}

type missingDep struct{}

type gadget struct {
	seq      []string
	repo     *Repo
	notifier *Notifier
}

func (g *gadget) SetRepo(r *Repo) {
	g.seq = append(g.seq, "repo")
	g.repo = r
}

func (g *gadget) SetNotifier(n *Notifier) {
	g.seq = append(g.seq, "notifier")
	g.notifier = n
}

func (g *gadget) SetMissing(m *missingDep) {
	g.seq = append(g.seq, "missing")
}

func TestResolve_RefBeatsTypeAutowire(t *testing.T) {
	c := di.NewContainer()

	named := &Repo{ID: 1}
	plain := &Repo{ID: 2}
	// 命名定义先注册，后注册的无名定义占据类型槽位
	di.RegisterValue[*Repo](c, named, di.WithName("primary"))
	di.RegisterValue[*Repo](c, plain)
	di.Register[*primaryHolder](c)
	di.Register[*Service](c)

	holder, err := di.Resolve[*primaryHolder](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if holder.Repo != named {
		t.Error("explicit ref should win over the type-indexed definition")
	}

	svc, err := di.Resolve[*Service](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Repo != plain {
		t.Error("type autowiring should use the last unnamed definition")
	}
}

func TestResolve_CandidateExclusion(t *testing.T) {
	c := di.NewContainer()

	excluded := &Repo{ID: 7}
	di.RegisterValue[*Repo](c, excluded, di.WithName("backup"), di.WithCandidate(false))
	di.Register[*Service](c)
	di.Register[*backupHolder](c)

	// 自动装配不得命中非候选定义
	_, err := di.Resolve[*Service](c)
	var unresolvable *di.UnresolvableDependencyError
	if !errors.As(err, &unresolvable) {
		t.Fatalf("expected UnresolvableDependencyError, got %v", err)
	}
	if !strings.Contains(unresolvable.Reason, "excluded") {
		t.Errorf("reason should mention exclusion, got %q", unresolvable.Reason)
	}

	// 直接获取不经过 candidate 闸门
	direct, err := di.Resolve[*Repo](c)
	if err != nil {
		t.Fatalf("direct Get should succeed: %v", err)
	}
	if direct != excluded {
		t.Error("direct Get should return the excluded definition")
	}

	// 显式 ref 同样不受限制
	holder, err := di.Resolve[*backupHolder](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if holder.Repo != excluded {
		t.Error("explicit ref should bypass the candidate gate")
	}
}

func TestResolve_AutowireDisabled(t *testing.T) {
	c := di.NewContainer()

	di.RegisterValue[*Repo](c, &Repo{ID: 3})
	di.Register[*optionalTypeHolder](c, di.WithAutowire(di.AutowireNone()))
	di.Register[*Service](c, di.WithAutowire(di.AutowireNone()))

	// 可选槽位以零值兜底
	holder, err := di.Resolve[*optionalTypeHolder](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if holder.Repo != nil {
		t.Error("optional slot should fall back to zero value when autowiring is off")
	}

	// 必填槽位直接失败
	_, err = di.Resolve[*Service](c)
	var unresolvable *di.UnresolvableDependencyError
	if !errors.As(err, &unresolvable) {
		t.Fatalf("expected UnresolvableDependencyError, got %v", err)
	}
	if !strings.Contains(unresolvable.Reason, "disabled") {
		t.Errorf("reason should mention disabled autowiring, got %q", unresolvable.Reason)
	}
}

func TestResolve_DefaultValue(t *testing.T) {
	c := di.NewContainer()

	fallback := &Repo{ID: 99}
	di.Register[*Service](c, di.WithParameters(
		di.ParameterConfig{Type: di.TypeOf[*Repo](), Value: fallback},
	))

	// 没有可用定义时使用显式默认值
	svc, err := di.Resolve[*Service](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Repo != fallback {
		t.Error("explicit default value should be used when nothing is registered")
	}

	// 注册定义后，按类型装配压过默认值
	registered := &Repo{ID: 100}
	di.RegisterValue[*Repo](c, registered)

	svc, err = di.Resolve[*Service](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Repo != registered {
		t.Error("type autowiring should win over the default value")
	}
}

func TestResolve_MissingRef(t *testing.T) {
	c := di.NewContainer()

	di.Register[*primaryHolder](c)

	// 引用缺失即失败
	_, err := di.Resolve[*primaryHolder](c)
	var missing *di.DefinitionMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected DefinitionMissingError, got %v", err)
	}
	if missing.Name != "primary" {
		t.Errorf("error should carry the unknown ref, got %q", missing.Name)
	}
}

func TestResolve_MissingRefIgnoresDefault(t *testing.T) {
	c := di.NewContainer()

	// 槽位带显式引用和默认值：引用优先且不回退
	fallback := &Repo{ID: 1}
	di.Register[*Service](c, di.WithParameters(
		di.ParameterConfig{Ref: "ghost", Value: fallback},
	))

	_, err := di.Resolve[*Service](c)
	var missing *di.DefinitionMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected DefinitionMissingError, got %v", err)
	}
	if missing.Name != "ghost" {
		t.Errorf("error should carry the unknown ref, got %q", missing.Name)
	}

	// 同一槽位的默认值在无引用时仍然可用
	di.Register[*Service](c, di.WithParameters(
		di.ParameterConfig{Type: di.TypeOf[*Repo](), Value: fallback},
	))
	svc, err := di.Resolve[*Service](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Repo != fallback {
		t.Error("default value should apply when the slot has no ref")
	}
}

func TestResolve_MalformedParameter(t *testing.T) {
	c := di.NewContainer()

	// 槽位既无 ref 也无类型和默认值
	di.Register[*Service](c, di.WithParameters(di.ParameterConfig{}))

	_, err := di.Resolve[*Service](c)
	var malformed *di.MalformedParameterError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedParameterError, got %v", err)
	}
	if malformed.Index != 0 {
		t.Errorf("expected index 0, got %d", malformed.Index)
	}
	if malformed.Definition == nil || malformed.Definition.ConcreteType != di.TypeOf[*Service]() {
		t.Error("error should point at the definition being resolved")
	}
}

func TestResolve_CircularDependency(t *testing.T) {
	c := di.NewContainer(di.WithDiscovery())

	_, err := di.Resolve[*cycleA](c)
	var circular *di.CircularDependencyError
	if !errors.As(err, &circular) {
		t.Fatalf("expected CircularDependencyError, got %v", err)
	}
	if len(circular.Trace) != 2 {
		t.Fatalf("expected trace of 2 definitions, got %d", len(circular.Trace))
	}

	// 错误信息闭合环路: A -> B -> A
	msg := err.Error()
	if strings.Count(msg, "cycleA") != 2 || strings.Count(msg, "cycleB") != 1 {
		t.Errorf("trace should close the loop, got %q", msg)
	}
}

func TestResolve_SelfCycle(t *testing.T) {
	c := di.NewContainer(di.WithDiscovery())

	_, err := di.Resolve[*selfRef](c)
	var circular *di.CircularDependencyError
	if !errors.As(err, &circular) {
		t.Fatalf("expected CircularDependencyError, got %v", err)
	}
	if len(circular.Trace) != 1 {
		t.Errorf("self cycle trace should contain one definition, got %d", len(circular.Trace))
	}
}

func TestResolve_MutatorOrderAndBestEffort(t *testing.T) {
	c := di.NewContainer()

	repo := &Repo{ID: 5}
	notifier := &Notifier{}
	di.RegisterValue[*Repo](c, repo)
	di.RegisterValue[*Notifier](c, notifier)
	di.Register[*gadget](c, di.WithMutators(
		di.MutatorConfig{Name: "SetRepo", Type: di.TypeOf[*Repo]()},
		di.MutatorConfig{Name: "SetMissing", Type: di.TypeOf[*missingDep]()},
		di.MutatorConfig{Name: "SetNotifier", Type: di.TypeOf[*Notifier]()},
	))

	// Mutator 参数缺失只跳过该条，解析整体成功
	g, err := di.Resolve[*gadget](c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.repo != repo || g.notifier != notifier {
		t.Error("resolvable mutators should all be applied")
	}
	if len(g.seq) != 2 || g.seq[0] != "repo" || g.seq[1] != "notifier" {
		t.Errorf("mutators should run in declaration order, skipping failures: %v", g.seq)
	}
}

func TestInvoke(t *testing.T) {
	c := di.NewContainer()

	repo := &Repo{ID: 11}
	di.RegisterValue[*Repo](c, repo)

	var got *Repo
	if err := di.Invoke(c, func(r *Repo) { got = r }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != repo {
		t.Error("Invoke should resolve function arguments from the container")
	}

	// 最后一个 error 返回值透传
	wantErr := errors.New("boom")
	if err := di.Invoke(c, func(r *Repo) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("expected propagated error, got %v", err)
	}

	// 参数无法解析时失败
	if err := di.Invoke(c, func(m *missingDep) {}); err == nil {
		t.Error("expected error for unresolvable argument")
	}

	// 非函数直接拒绝
	if err := di.Invoke(c, 42); err == nil {
		t.Error("expected error for non-function value")
	}
}

func TestTypeRegistry(t *testing.T) {
	r := di.NewTypeRegistry()

	di.RegisterType[*Repo](r)
	di.RegisterType[*Service](r, "services.user")

	if typ, ok := r.Lookup(di.TypeOf[*Repo]().String()); !ok || typ != di.TypeOf[*Repo]() {
		t.Error("default key should be the type string")
	}
	if typ, ok := r.Lookup("services.user"); !ok || typ != di.TypeOf[*Service]() {
		t.Error("custom key should map to the registered type")
	}
	if _, ok := r.Lookup("unknown"); ok {
		t.Error("unknown name should not resolve")
	}
}

func TestParseAutowire(t *testing.T) {
	set, err := di.ParseAutowire("constructor")
	if err != nil || !set.Constructor || set.Mutators {
		t.Errorf("unexpected result: %v %v", set, err)
	}

	set, err = di.ParseAutowire("constructor", "mutators")
	if err != nil || set != di.AutowireAll() {
		t.Errorf("unexpected result: %v %v", set, err)
	}

	if _, err := di.ParseAutowire("bogus"); err == nil {
		t.Error("unknown flag should be rejected")
	}
}

package config

import (
	"fmt"
	"reflect"

	"github.com/gocrud/ioc/di"
)

// ServiceSpec 配置文件中一条服务声明
// concrete/type 字段是类型名称字符串，经 di.TypeRegistry 映射到 Go 类型
type ServiceSpec struct {
	Concrete   string          `json:"concrete" yaml:"concrete"`
	Name       string          `json:"name" yaml:"name"`
	Autowire   []string        `json:"autowire" yaml:"autowire"`
	Candidate  *bool           `json:"candidate" yaml:"candidate"`
	Parameters []ParameterSpec `json:"parameters" yaml:"parameters"`
	Mutators   []MutatorSpec   `json:"mutators" yaml:"mutators"`
}

// ParameterSpec 一条参数声明
type ParameterSpec struct {
	Ref      string `json:"ref" yaml:"ref"`
	Type     string `json:"type" yaml:"type"`
	Value    any    `json:"value" yaml:"value"`
	Optional bool   `json:"optional" yaml:"optional"`
}

// MutatorSpec 一条 Mutator 声明
// type 可省略，省略时从方法签名推断
type MutatorSpec struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// RegisterServices 从配置的 services 节读取服务声明并注册到容器
// 声明使用的类型名称必须事先在 registry 注册，
// 未注册的名称在这里报错而不是留到解析期
func RegisterServices(cfg Configuration, registry *di.TypeRegistry, container di.Container) error {
	if _, ok := cfg.GetAll()["services"]; !ok {
		return nil
	}

	var specs []ServiceSpec
	if err := cfg.Bind("services", &specs); err != nil {
		return fmt.Errorf("config: failed to bind services section: %w", err)
	}

	for i, spec := range specs {
		defConfig, err := compileServiceSpec(spec, registry)
		if err != nil {
			return fmt.Errorf("config: service %d (%s): %w", i, spec.Concrete, err)
		}
		if err := container.Add(defConfig); err != nil {
			return fmt.Errorf("config: service %d (%s): %w", i, spec.Concrete, err)
		}
	}
	return nil
}

// compileServiceSpec 将一条声明翻译为定义配置
func compileServiceSpec(spec ServiceSpec, registry *di.TypeRegistry) (di.DefinitionConfig, error) {
	var cfg di.DefinitionConfig

	if spec.Concrete == "" {
		return cfg, fmt.Errorf("missing concrete type name")
	}
	concrete, ok := registry.Lookup(spec.Concrete)
	if !ok {
		return cfg, fmt.Errorf("type %q is not registered", spec.Concrete)
	}
	cfg.Concrete = concrete
	cfg.Name = spec.Name
	cfg.Candidate = spec.Candidate

	// autowire 未声明时默认全开，声明为空列表时全关
	if spec.Autowire == nil {
		cfg.Autowire = di.AutowireAll()
	} else {
		set, err := di.ParseAutowire(spec.Autowire...)
		if err != nil {
			return cfg, err
		}
		cfg.Autowire = set
	}

	for _, p := range spec.Parameters {
		param := di.ParameterConfig{
			Ref:      p.Ref,
			Value:    p.Value,
			Optional: p.Optional,
		}
		if p.Type != "" {
			typ, ok := registry.Lookup(p.Type)
			if !ok {
				return cfg, fmt.Errorf("parameter type %q is not registered", p.Type)
			}
			param.Type = typ
		}
		cfg.Parameters = append(cfg.Parameters, param)
	}

	for _, m := range spec.Mutators {
		mutator := di.MutatorConfig{Name: m.Name}
		if m.Type != "" {
			typ, ok := registry.Lookup(m.Type)
			if !ok {
				return cfg, fmt.Errorf("mutator type %q is not registered", m.Type)
			}
			mutator.Type = typ
		} else {
			typ, err := inferMutatorType(concrete, m.Name)
			if err != nil {
				return cfg, err
			}
			mutator.Type = typ
		}
		cfg.Mutators = append(cfg.Mutators, mutator)
	}

	return cfg, nil
}

// inferMutatorType 从方法签名推断 Mutator 参数类型
func inferMutatorType(concrete reflect.Type, name string) (reflect.Type, error) {
	recv := concrete
	if recv.Kind() != reflect.Pointer && recv.Kind() != reflect.Interface {
		recv = reflect.PointerTo(recv)
	}

	method, ok := recv.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("type %v has no method %s", concrete, name)
	}

	numIn := method.Type.NumIn()
	if recv.Kind() != reflect.Interface {
		numIn--
	}
	if numIn != 1 {
		return nil, fmt.Errorf("mutator %v.%s must accept exactly one argument", concrete, name)
	}
	return method.Type.In(method.Type.NumIn() - 1), nil
}

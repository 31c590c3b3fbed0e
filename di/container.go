package di

import (
	"fmt"
	"reflect"

	"github.com/gocrud/ioc/logging"
)

// Container 是依赖注入容器的接口
// 每次 Get 都完整地重新解析并构造，容器不缓存自己构造的实例，
// 也没有作用域或生命周期概念；返回实例的所有权完全交给调用方
type Container interface {
	// Add 注册一条定义配置，校验并编译后存入仓库
	Add(cfg DefinitionConfig) error

	// Get 解析并返回 typ 的完整实例
	Get(typ reflect.Type) (any, error)

	// GetByName 按逻辑名称直接解析；直接获取不经过 candidate 限制
	GetByName(name string) (any, error)

	// Inject 按运行时类型查找定义，仅对已构造的实例执行 Mutator 注入
	Inject(instance any) error
}

// container 具体实现
type container struct {
	repo      *Repository
	assembler Assembler
	reflector TypeReflector
	discovery bool
	logger    logging.Logger
}

// ContainerOption 容器构造选项
type ContainerOption func(*container)

// WithDiscovery 允许为未注册的类型按构造签名即时生成定义
func WithDiscovery() ContainerOption {
	return func(c *container) {
		c.discovery = true
	}
}

// WithAssembler 替换实例装配器
func WithAssembler(assembler Assembler) ContainerOption {
	return func(c *container) {
		c.assembler = assembler
	}
}

// WithReflector 替换类型内省实现
func WithReflector(reflector TypeReflector) ContainerOption {
	return func(c *container) {
		c.reflector = reflector
	}
}

// WithLogger 设置容器日志（默认静默）
func WithLogger(logger logging.Logger) ContainerOption {
	return func(c *container) {
		c.logger = logger
	}
}

// NewContainer 创建一个新的空容器
func NewContainer(opts ...ContainerOption) Container {
	c := &container{
		repo:      NewRepository(),
		assembler: NewReflectAssembler(),
		reflector: NewStructReflector(),
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add 校验、编译并存入一条定义
func (c *container) Add(cfg DefinitionConfig) error {
	def, err := c.compile(cfg)
	if err != nil {
		return err
	}
	c.repo.Insert(def)
	c.logger.Debug("definition registered",
		logging.Field{Key: "type", Value: def.ConcreteType.String()},
		logging.Field{Key: "name", Value: def.Name})
	return nil
}

// compile 把原始配置记录编译为定义
func (c *container) compile(cfg DefinitionConfig) (*Definition, error) {
	if cfg.Concrete == nil && cfg.Value != nil {
		cfg.Concrete = reflect.TypeOf(cfg.Value)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	def := &Definition{
		ConcreteType: cfg.Concrete,
		Name:         cfg.Name,
		Autowire:     cfg.Autowire,
		Candidate:    true,
	}
	if cfg.Candidate != nil {
		def.Candidate = *cfg.Candidate
	}

	switch {
	case cfg.Value != nil:
		def.Value = cfg.Value
		def.IsValue = true
	case len(cfg.Parameters) > 0:
		def.Parameters = make([]Parameter, len(cfg.Parameters))
		for i, p := range cfg.Parameters {
			def.Parameters[i] = Parameter{Ref: p.Ref, Type: p.Type, Value: p.Value, Optional: p.Optional}
		}
	default:
		// 未显式配置参数时以构造签名为准
		specs, err := c.reflector.DescribeConstructor(cfg.Concrete)
		if err != nil {
			return nil, err
		}
		def.Parameters = parametersFromSpecs(specs)
	}

	for _, m := range cfg.Mutators {
		def.Mutators = append(def.Mutators, Mutator{Name: m.Name, Type: m.Type})
	}
	return def, nil
}

// Get 解析并返回 typ 的完整实例
func (c *container) Get(typ reflect.Type) (any, error) {
	def, err := c.definitionFor(typ)
	if err != nil {
		return nil, err
	}
	return newResolution(c).resolveDefinition(def)
}

// GetByName 按逻辑名称解析
func (c *container) GetByName(name string) (any, error) {
	def, ok := c.repo.GetByName(name)
	if !ok {
		return nil, &DefinitionMissingError{Name: name}
	}
	return newResolution(c).resolveDefinition(def)
}

// Inject 仅执行实例定义的 Mutator 注入，不重新构造实例本身
func (c *container) Inject(instance any) error {
	if instance == nil {
		return fmt.Errorf("di: cannot inject into nil instance")
	}
	def, err := c.definitionFor(reflect.TypeOf(instance))
	if err != nil {
		return err
	}
	if !def.Autowire.Mutators {
		return nil
	}
	newResolution(c).applyMutators(def, instance)
	return nil
}

// definitionFor 查找 typ 的定义，未注册时尝试发现
// 发现失败包装为 DefinitionMissing 并保留底层原因
func (c *container) definitionFor(typ reflect.Type) (*Definition, error) {
	if def, ok := c.repo.GetByType(typ); ok {
		return def, nil
	}
	if !c.discovery {
		return nil, &DefinitionMissingError{Type: typ}
	}
	def, err := c.discover(typ)
	if err != nil {
		return nil, &DefinitionMissingError{Type: typ, Cause: err}
	}
	return def, nil
}

// discover 按构造签名为 typ 生成定义并插入仓库
// 插入仓库是对内省结果的记忆化，后续同类型查找不再重复发现
func (c *container) discover(typ reflect.Type) (*Definition, error) {
	specs, err := c.reflector.DescribeConstructor(typ)
	if err != nil {
		return nil, err
	}

	def := &Definition{
		ConcreteType: typ,
		Parameters:   parametersFromSpecs(specs),
		Autowire:     AutowireAll(),
		Candidate:    true,
	}
	c.repo.Insert(def)

	c.logger.Debug("definition discovered",
		logging.Field{Key: "type", Value: typ.String()},
		logging.Field{Key: "parameters", Value: len(def.Parameters)})
	return def, nil
}

// lookupOrDiscover 为按类型装配查找定义，必要时尝试发现
// 这里的发现失败按未找到处理，由参数解析决定兜底默认值还是报错
func (c *container) lookupOrDiscover(typ reflect.Type) (*Definition, bool) {
	if def, ok := c.repo.GetByType(typ); ok {
		return def, true
	}
	if !c.discovery {
		return nil, false
	}
	def, err := c.discover(typ)
	if err != nil {
		c.logger.Debug("discovery failed",
			logging.Field{Key: "type", Value: typ.String()},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, false
	}
	return def, true
}

func parametersFromSpecs(specs []ParameterSpec) []Parameter {
	params := make([]Parameter, len(specs))
	for i, spec := range specs {
		params[i] = Parameter{Ref: spec.Ref, Type: spec.Type, Optional: spec.Optional}
	}
	return params
}

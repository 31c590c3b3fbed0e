package di

// Option 调整一条定义配置
type Option func(*DefinitionConfig)

// WithName 设置定义的逻辑名称，供显式 ref 与 GetByName 使用
func WithName(name string) Option {
	return func(c *DefinitionConfig) {
		c.Name = name
	}
}

// WithParameters 显式配置有序参数，覆盖按构造签名的推导
func WithParameters(params ...ParameterConfig) Option {
	return func(c *DefinitionConfig) {
		c.Parameters = params
	}
}

// WithMutators 配置构造后注入
func WithMutators(mutators ...MutatorConfig) Option {
	return func(c *DefinitionConfig) {
		c.Mutators = mutators
	}
}

// WithAutowire 设置自动装配能力集合
func WithAutowire(set AutowireSet) Option {
	return func(c *DefinitionConfig) {
		c.Autowire = set
	}
}

// WithCandidate 控制定义能否作为自动装配目标
// 设为 false 后仍可显式 ref 或直接 Get
func WithCandidate(candidate bool) Option {
	return func(c *DefinitionConfig) {
		c.Candidate = &candidate
	}
}

// WithInstance 将预构建实例注册为值定义
// 解析时直接返回该实例，基础设施客户端（数据库、缓存等）用这种方式入容器
func WithInstance(value any) Option {
	return func(c *DefinitionConfig) {
		c.Value = value
	}
}

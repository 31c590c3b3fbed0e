package di

import (
	"fmt"
	"reflect"
)

// AutowireSet 自动装配能力集合
// 控制定义在解析过程中允许哪些隐式装配行为；显式 ref 不受此限制
type AutowireSet struct {
	// Constructor 允许按类型解析构造参数
	Constructor bool
	// Mutators 允许在构造完成后执行 Mutator 注入
	Mutators bool
}

// AutowireAll 返回开启全部能力的集合
func AutowireAll() AutowireSet {
	return AutowireSet{Constructor: true, Mutators: true}
}

// AutowireNone 返回关闭全部能力的集合
func AutowireNone() AutowireSet {
	return AutowireSet{}
}

// ParseAutowire 从命名标记解析装配能力集合
// 可识别的标记: "constructor", "mutators"；未知标记报错而不是静默忽略
func ParseAutowire(flags ...string) (AutowireSet, error) {
	var set AutowireSet
	for _, flag := range flags {
		switch flag {
		case "constructor":
			set.Constructor = true
		case "mutators":
			set.Mutators = true
		default:
			return AutowireSet{}, fmt.Errorf("di: unknown autowire flag %q", flag)
		}
	}
	return set, nil
}

// Parameter 描述一个构造参数槽位
// 每个槽位只走一条解析路径，优先级固定: Ref > 按类型自动装配 > 默认值。
// Ref 非空时默认值不参与解析，名称查不到即失败
type Parameter struct {
	// Ref 指向另一个定义的逻辑名称（最高优先级）
	Ref string
	// Type 声明类型，Ref 为空时用于按类型自动装配
	Type reflect.Type
	// Value 显式默认值，Ref 为空时才生效
	Value any
	// Optional 为 true 时允许以声明类型的零值兜底，Ref 为空时才生效
	Optional bool
}

// HasDefault 是否存在可用的默认值
func (p Parameter) HasDefault() bool {
	return p.Value != nil || p.Optional
}

// DefaultValue 返回默认值
// Optional 且未提供 Value 时返回声明类型的零值
func (p Parameter) DefaultValue() any {
	if p.Value != nil {
		return p.Value
	}
	if p.Type != nil {
		return reflect.Zero(p.Type).Interface()
	}
	return nil
}

// Mutator 描述一次构造后的 setter 注入
type Mutator struct {
	// Name 目标方法名，方法必须恰好接受一个参数
	Name string
	// Type 方法唯一参数的类型，按自动装配规则解析
	Type reflect.Type
}

// Definition 一个服务的构建配方
// 由配置记录编译而来，或在发现（discovery）时从类型构造签名生成
type Definition struct {
	// ConcreteType 要实例化的具体类型，创建后不可变
	ConcreteType reflect.Type
	// Name 可选的逻辑名称；"" 表示仅可按类型获取
	Name string
	// Parameters 按构造签名顺序排列的参数槽位，顺序在编译期固定
	Parameters []Parameter
	// Mutators 构造后注入，声明顺序即注入顺序
	Mutators []Mutator
	// Autowire 此定义允许的自动装配能力
	Autowire AutowireSet
	// Candidate 为 false 时此定义不能作为自动装配的目标，
	// 仍可通过显式 ref 或直接 Get 获取
	Candidate bool

	// Value 预构建实例；IsValue 为 true 时解析跳过装配直接返回它
	Value   any
	IsValue bool
}

// String 返回用于日志与错误信息的短描述
func (d *Definition) String() string {
	if d.Name != "" {
		return fmt.Sprintf("%v (name=%s)", d.ConcreteType, d.Name)
	}
	return d.ConcreteType.String()
}

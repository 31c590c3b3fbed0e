package di

import (
	"fmt"
	"reflect"
)

// DefinitionConfig 定义的原始配置记录
// 通过 Container.Add 校验并编译为 Definition。
// 字段组合在注册期显式校验，不合法的记录直接拒绝而不是静默忽略
type DefinitionConfig struct {
	// Concrete 要实例化的具体类型；Value 非空时可省略，由实例推断
	Concrete reflect.Type

	// Name 可选的逻辑名称
	Name string

	// Parameters 有序参数配置；为空时由构造签名推导
	Parameters []ParameterConfig

	// Mutators 构造后注入配置
	Mutators []MutatorConfig

	// Autowire 自动装配能力
	Autowire AutowireSet

	// Candidate 是否可作为自动装配目标；nil 表示默认 true
	Candidate *bool

	// Value 预构建实例，与 Parameters 互斥
	Value any
}

// ParameterConfig 单个参数槽位的原始配置
type ParameterConfig struct {
	Ref      string
	Type     reflect.Type
	Value    any
	Optional bool
}

// MutatorConfig 单个 Mutator 的原始配置
type MutatorConfig struct {
	Name string
	Type reflect.Type
}

// Validate 校验配置的结构合法性
// 注意：参数槽位本身是否可解析属于运行期问题（MalformedParameter 在解析时报），
// 这里只拒绝注册期就能断定的错误
func (c *DefinitionConfig) Validate() error {
	if c.Concrete == nil {
		return fmt.Errorf("di: definition requires a concrete type")
	}

	if c.Value != nil {
		if len(c.Parameters) > 0 {
			return fmt.Errorf("di: value definition for %v cannot declare parameters", c.Concrete)
		}
		if !reflect.TypeOf(c.Value).AssignableTo(c.Concrete) {
			return fmt.Errorf("di: value of type %T is not assignable to %v", c.Value, c.Concrete)
		}
	} else {
		elem := c.Concrete
		if elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			return fmt.Errorf("di: concrete type %v is not constructible", c.Concrete)
		}

		if len(c.Parameters) > 0 {
			slots, err := taggedFields(c.Concrete)
			if err != nil {
				return err
			}
			// 参数序列必须与构造签名一一对应
			if len(c.Parameters) != len(slots) {
				return fmt.Errorf("di: %v declares %d constructor slots but %d parameters configured",
					c.Concrete, len(slots), len(c.Parameters))
			}
			for i, p := range c.Parameters {
				if p.Type != nil && !p.Type.AssignableTo(slots[i].typ) {
					return fmt.Errorf("di: parameter %d of %v declares %v, slot %s expects %v",
						i, c.Concrete, p.Type, slots[i].name, slots[i].typ)
				}
			}
		}
	}

	for _, m := range c.Mutators {
		if m.Name == "" {
			return fmt.Errorf("di: mutator of %v requires a method name", c.Concrete)
		}
		if m.Type == nil {
			return fmt.Errorf("di: mutator %s of %v requires an argument type", m.Name, c.Concrete)
		}
		if err := validateMutatorMethod(c.Concrete, m); err != nil {
			return err
		}
	}

	return nil
}

// validateMutatorMethod 确认目标方法存在且恰好接受一个兼容参数
func validateMutatorMethod(concrete reflect.Type, m MutatorConfig) error {
	recv := concrete
	// setter 习惯挂在指针接收者上
	if recv.Kind() != reflect.Pointer && recv.Kind() != reflect.Interface {
		recv = reflect.PointerTo(recv)
	}

	method, ok := recv.MethodByName(m.Name)
	if !ok {
		return fmt.Errorf("di: type %v has no method %s", concrete, m.Name)
	}

	numIn := method.Type.NumIn()
	if recv.Kind() != reflect.Interface {
		numIn-- // 非接口方法集的第一个入参是接收者
	}
	if numIn != 1 {
		return fmt.Errorf("di: mutator %v.%s must accept exactly one argument", concrete, m.Name)
	}

	arg := method.Type.In(method.Type.NumIn() - 1)
	if !m.Type.AssignableTo(arg) {
		return fmt.Errorf("di: mutator %v.%s expects %v, configured type is %v", concrete, m.Name, arg, m.Type)
	}
	return nil
}

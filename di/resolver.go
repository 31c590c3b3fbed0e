package di

import (
	"reflect"

	"github.com/gocrud/ioc/logging"
)

// resolution 一次顶层 Get/Inject 调用的解析过程
// 防护栈为本次调用私有，递归解析共享它；调用结束即废弃
type resolution struct {
	c     *container
	guard *failsafeStack
}

func newResolution(c *container) *resolution {
	return &resolution{c: c, guard: newFailsafeStack()}
}

// resolveDefinition 把一个定义解析为完整实例
// 流程: 锁定防护栈 -> 按序解析参数 -> 装配 -> 解锁 -> Mutator 注入
func (r *resolution) resolveDefinition(def *Definition) (any, error) {
	if r.guard.Contains(def) {
		return nil, &CircularDependencyError{Trace: r.guard.Slice(def)}
	}
	r.guard.Attach(def)

	args := make([]any, len(def.Parameters))
	for i := range def.Parameters {
		val, err := r.resolveParameter(def, i)
		if err != nil {
			// 任何参数失败都中止整个顶层调用，防护栈无需回退
			return nil, err
		}
		args[i] = val
	}

	var instance any
	if def.IsValue {
		instance = def.Value
	} else {
		var err error
		instance, err = r.c.assembler.GetInstance(def.ConcreteType, args)
		if err != nil {
			return nil, err
		}
	}

	r.guard.Detach(def)

	if def.Autowire.Mutators {
		r.applyMutators(def, instance)
	}
	return instance, nil
}

// resolveParameter 将一个参数槽位解析为具体值
// 优先级: 显式 ref -> 按类型自动装配 -> 默认值；这是刻意的优先序，
// 显式装配永远压过隐式发现，不是"先非空者胜"的巧合
func (r *resolution) resolveParameter(def *Definition, idx int) (any, error) {
	p := def.Parameters[idx]

	if p.Ref != "" {
		// 显式引用不回退默认值，名称缺失即失败
		target, ok := r.c.repo.GetByName(p.Ref)
		if !ok {
			return nil, &DefinitionMissingError{Name: p.Ref}
		}
		// 显式引用不经过 candidate 闸门
		return r.resolveDefinition(target)
	}

	if p.Type != nil {
		if def.Autowire.Constructor {
			if target, ok := r.c.lookupOrDiscover(p.Type); ok {
				return r.resolveAutowired(target)
			}
		}
		if p.HasDefault() {
			return p.DefaultValue(), nil
		}
		if !def.Autowire.Constructor {
			return nil, &UnresolvableDependencyError{Type: p.Type, Reason: "constructor autowiring disabled and no default value"}
		}
		return nil, &UnresolvableDependencyError{Type: p.Type, Reason: "no definition available and no default value"}
	}

	if p.HasDefault() {
		return p.DefaultValue(), nil
	}

	// 错误归属于防护栈最内层的定义
	return nil, &MalformedParameterError{Definition: r.guard.End(), Index: idx}
}

// resolveAutowired 自动装配入口的候选闸门
// 定义被间接到达时（类型参数或 Mutator 参数）才会经过这里；
// 直接 Get 与显式 ref 不受 Candidate 限制
func (r *resolution) resolveAutowired(def *Definition) (any, error) {
	if !def.Candidate {
		return nil, &UnresolvableDependencyError{Type: def.ConcreteType, Reason: "definition is excluded from autowiring"}
	}
	return r.resolveDefinition(def)
}

// applyMutators 按声明顺序执行 Mutator 注入
// Mutator 注入是尽力而为的：参数解析失败只跳过该条并记录告警，
// 不像构造注入那样中止整个解析
func (r *resolution) applyMutators(def *Definition, instance any) {
	instVal := reflect.ValueOf(instance)

	for _, m := range def.Mutators {
		arg, err := r.resolveMutatorArgument(m.Type)
		if err != nil {
			r.c.logger.Warn("mutator skipped",
				logging.Field{Key: "type", Value: def.ConcreteType.String()},
				logging.Field{Key: "mutator", Value: m.Name},
				logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		if arg == nil {
			continue
		}

		method := instVal.MethodByName(m.Name)
		if !method.IsValid() {
			// 编译期校验过方法存在，这里兜底的是值定义携带的收窄实例
			r.c.logger.Warn("mutator skipped",
				logging.Field{Key: "type", Value: def.ConcreteType.String()},
				logging.Field{Key: "mutator", Value: m.Name},
				logging.Field{Key: "error", Value: "method not found on instance"})
			continue
		}
		method.Call([]reflect.Value{reflect.ValueOf(arg)})
	}
}

// resolveMutatorArgument 与按类型装配的构造参数遵循同一规则
func (r *resolution) resolveMutatorArgument(typ reflect.Type) (any, error) {
	target, ok := r.c.lookupOrDiscover(typ)
	if !ok {
		return nil, &DefinitionMissingError{Type: typ}
	}
	return r.resolveAutowired(target)
}

package di

import (
	"fmt"
	"reflect"
	"strings"
)

// DefinitionMissingError 未找到所需类型或名称的定义，且发现不可用或失败
type DefinitionMissingError struct {
	Type reflect.Type
	Name string
	// Cause 发现失败时保留底层原因
	Cause error
}

func (e *DefinitionMissingError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("di: no definition named %q", e.Name)
	case e.Cause != nil:
		return fmt.Sprintf("di: no definition for %v (discovery failed: %v)", e.Type, e.Cause)
	default:
		return fmt.Sprintf("di: no definition for %v", e.Type)
	}
}

func (e *DefinitionMissingError) Unwrap() error {
	return e.Cause
}

// CircularDependencyError 解析过程中重入了尚未完成的定义
// Trace 为防护栈上自重入定义第一次出现起的有序定义链
type CircularDependencyError struct {
	Trace []*Definition
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, 0, len(e.Trace)+1)
	for _, def := range e.Trace {
		names = append(names, def.ConcreteType.String())
	}
	if len(e.Trace) > 0 {
		// 闭合环以便一眼看出重入点
		names = append(names, e.Trace[0].ConcreteType.String())
	}
	return "di: circular dependency: " + strings.Join(names, " -> ")
}

// MalformedParameterError 参数既无 ref、无类型，也无可用默认值
// Definition 为出错时防护栈最内层的定义
type MalformedParameterError struct {
	Definition *Definition
	Index      int
}

func (e *MalformedParameterError) Error() string {
	return fmt.Sprintf("di: malformed parameter %d of %v: no ref, type or default value", e.Index, e.Definition.ConcreteType)
}

// UnresolvableDependencyError 按类型的依赖无法满足：
// 装配能力未开启且无默认值，或目标定义被排除在自动装配之外
type UnresolvableDependencyError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnresolvableDependencyError) Error() string {
	return fmt.Sprintf("di: cannot resolve dependency %v: %s", e.Type, e.Reason)
}

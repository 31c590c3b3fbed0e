package di

import (
	"fmt"
	"reflect"
)

// Assembler 实例装配器
// 解析引擎将 (具体类型, 有序参数) 交给它换取实例，对装配方式不做任何假设：
// 调用要么返回实例，要么返回错误
type Assembler interface {
	GetInstance(typ reflect.Type, args []any) (any, error)
}

// reflectAssembler 默认装配器
// 分配结构体并把有序参数按声明顺序赋给 di 标签字段
type reflectAssembler struct{}

// NewReflectAssembler 创建基于反射的默认 Assembler
func NewReflectAssembler() Assembler {
	return reflectAssembler{}
}

func (reflectAssembler) GetInstance(typ reflect.Type, args []any) (any, error) {
	slots, err := taggedFields(typ)
	if err != nil {
		return nil, err
	}
	if len(args) != len(slots) {
		return nil, fmt.Errorf("di: %v expects %d constructor arguments, got %d", typ, len(slots), len(args))
	}

	elem := typ
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	val := reflect.New(elem)
	structVal := val.Elem()

	for i, slot := range slots {
		if args[i] == nil {
			// 可选依赖缺省为零值
			continue
		}
		argVal := reflect.ValueOf(args[i])
		field := structVal.Field(slot.index)
		if !argVal.Type().AssignableTo(field.Type()) {
			if !argVal.Type().ConvertibleTo(field.Type()) {
				return nil, fmt.Errorf("di: cannot assign %T to field %s of %v", args[i], slot.name, elem)
			}
			// 配置中的默认值常见 int/float 宽化，允许可转换类型
			argVal = argVal.Convert(field.Type())
		}
		field.Set(argVal)
	}

	if typ.Kind() == reflect.Pointer {
		return val.Interface(), nil
	}
	return structVal.Interface(), nil
}

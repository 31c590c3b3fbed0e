package di

import (
	"fmt"
	"reflect"
	"strings"
)

// ParameterSpec 构造签名中一个槽位的描述
type ParameterSpec struct {
	Ref      string
	Type     reflect.Type
	Optional bool
}

// TypeReflector 类型构造签名的内省能力
// 发现（discovery）通过它把一个没有注册定义的类型转换为结构上合法的定义；
// 解析引擎不关心内省如何实现，测试可以注入假实现
type TypeReflector interface {
	// DescribeConstructor 返回 typ 的有序构造签名，无法描述时报错
	DescribeConstructor(typ reflect.Type) ([]ParameterSpec, error)
}

// structReflector 默认实现
// 约定: 带 di 标签的导出字段按声明顺序构成类型的构造签名
type structReflector struct{}

// NewStructReflector 创建基于结构体标签的 TypeReflector
func NewStructReflector() TypeReflector {
	return structReflector{}
}

func (structReflector) DescribeConstructor(typ reflect.Type) ([]ParameterSpec, error) {
	slots, err := taggedFields(typ)
	if err != nil {
		return nil, err
	}

	specs := make([]ParameterSpec, len(slots))
	for i, slot := range slots {
		specs[i] = ParameterSpec{
			Ref:      slot.ref,
			Type:     slot.typ,
			Optional: slot.optional,
		}
	}
	return specs, nil
}

// fieldSlot 构造签名中一个字段槽位的元数据
type fieldSlot struct {
	index    int
	name     string
	typ      reflect.Type
	ref      string
	optional bool
}

// taggedFields 返回类型构造签名对应的字段槽位
// 标签格式与解析规则:
//
//	di:""          按类型装配
//	di:"name"      显式引用名为 name 的定义
//	di:"?"         可选（零值兜底），等价于 di:"optional"
//
// 显式引用没有可选形式，名称缺失在解析时直接失败
func taggedFields(typ reflect.Type) ([]fieldSlot, error) {
	elem := typ
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil, fmt.Errorf("di: cannot describe constructor of %v", typ)
	}

	var slots []fieldSlot
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Field(i)
		tagValue, hasTag := field.Tag.Lookup("di")
		if !hasTag {
			continue
		}
		if !field.IsExported() {
			return nil, fmt.Errorf("di: field %s.%s carries a di tag but is not exported", elem.Name(), field.Name)
		}

		slot := fieldSlot{index: i, name: field.Name, typ: field.Type}

		// 多段标签一律拒绝而不是静默忽略多余部分
		if strings.Contains(tagValue, ",") {
			return nil, fmt.Errorf("di: field %s.%s has malformed di tag %q", elem.Name(), field.Name, tagValue)
		}

		ref := strings.TrimSpace(tagValue)
		if ref == "?" || ref == "optional" {
			ref = ""
			slot.optional = true
		}
		slot.ref = ref

		slots = append(slots, slot)
	}
	return slots, nil
}

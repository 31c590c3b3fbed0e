package di

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoke 调用 fn 并从容器解析其全部参数
// 参数按直接获取处理，不经过 candidate 闸门。
// 若 fn 的最后一个返回值是 error 则透传，其余返回值丢弃
func Invoke(c Container, fn any) error {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("di: Invoke expects a function, got %T", fn)
	}

	args := make([]reflect.Value, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		val, err := c.Get(fnType.In(i))
		if err != nil {
			return fmt.Errorf("di: argument %d: %w", i, err)
		}
		args[i] = reflect.ValueOf(val)
	}

	results := fnVal.Call(args)
	if len(results) > 0 {
		last := results[len(results)-1]
		if last.Type().Implements(errorType) && !last.IsNil() {
			return last.Interface().(error)
		}
	}
	return nil
}

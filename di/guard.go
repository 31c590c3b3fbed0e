package di

// failsafeStack 循环依赖防护栈
// 记录正在解析中的定义。每个顶层 Get/Inject 调用持有自己的栈并随递归传递，
// 不作为容器级共享状态，解析的非重入性由此显式化。
// 同一定义最多出现一次：未完成时的第二次压入即循环信号
type failsafeStack struct {
	stack []*Definition
	index map[*Definition]int
}

func newFailsafeStack() *failsafeStack {
	return &failsafeStack{index: make(map[*Definition]int)}
}

// Contains def 是否在栈中
func (s *failsafeStack) Contains(def *Definition) bool {
	_, ok := s.index[def]
	return ok
}

// Attach 压入一个定义，调用方必须先确认 !Contains
func (s *failsafeStack) Attach(def *Definition) {
	s.index[def] = len(s.stack)
	s.stack = append(s.stack, def)
}

// Detach 移除一个定义
func (s *failsafeStack) Detach(def *Definition) {
	pos, ok := s.index[def]
	if !ok {
		return
	}
	delete(s.index, def)
	s.stack = append(s.stack[:pos], s.stack[pos+1:]...)
	for i := pos; i < len(s.stack); i++ {
		s.index[s.stack[i]] = i
	}
}

// End 返回最近压入的定义，即当前最内层的解析上下文
func (s *failsafeStack) End() *Definition {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Slice 返回从 def 第一次出现到栈顶的定义链，即循环本身
func (s *failsafeStack) Slice(def *Definition) []*Definition {
	pos, ok := s.index[def]
	if !ok {
		return nil
	}
	out := make([]*Definition, len(s.stack)-pos)
	copy(out, s.stack[pos:])
	return out
}

package di

import (
	"reflect"
	"testing"
)

type guardFixtureA struct{}
type guardFixtureB struct{}
type guardFixtureC struct{}

func defOf(t reflect.Type) *Definition {
	return &Definition{ConcreteType: t, Candidate: true}
}

func TestFailsafeStack_AttachDetach(t *testing.T) {
	s := newFailsafeStack()

	a := defOf(reflect.TypeOf(guardFixtureA{}))
	b := defOf(reflect.TypeOf(guardFixtureB{}))
	c := defOf(reflect.TypeOf(guardFixtureC{}))

	if s.Contains(a) {
		t.Error("empty stack should not contain anything")
	}
	if s.End() != nil {
		t.Error("End of empty stack should be nil")
	}

	s.Attach(a)
	s.Attach(b)
	s.Attach(c)

	if !s.Contains(a) || !s.Contains(b) || !s.Contains(c) {
		t.Error("all attached definitions should be contained")
	}
	if s.End() != c {
		t.Errorf("End should be the most recent definition, got %v", s.End())
	}

	// 移除中间元素后，位置索引必须仍然正确
	s.Detach(b)
	if s.Contains(b) {
		t.Error("detached definition should not be contained")
	}
	if s.End() != c {
		t.Errorf("End should still be c, got %v", s.End())
	}

	s.Detach(c)
	if s.End() != a {
		t.Errorf("End should be a after detaching c, got %v", s.End())
	}

	// 重复 Detach 不应 panic
	s.Detach(c)
}

func TestFailsafeStack_Slice(t *testing.T) {
	s := newFailsafeStack()

	a := defOf(reflect.TypeOf(guardFixtureA{}))
	b := defOf(reflect.TypeOf(guardFixtureB{}))
	c := defOf(reflect.TypeOf(guardFixtureC{}))

	s.Attach(a)
	s.Attach(b)
	s.Attach(c)

	trace := s.Slice(b)
	if len(trace) != 2 {
		t.Fatalf("expected trace of 2, got %d", len(trace))
	}
	if trace[0] != b || trace[1] != c {
		t.Error("trace should run from first occurrence to the top")
	}

	// 自循环：环从栈顶自身开始
	self := s.Slice(c)
	if len(self) != 1 || self[0] != c {
		t.Errorf("self trace should be [c], got %v", self)
	}

	if s.Slice(defOf(reflect.TypeOf(guardFixtureA{}))) != nil {
		t.Error("Slice of unknown definition should be nil")
	}
}

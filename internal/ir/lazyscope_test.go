package ir

import (
	"testing"

	"stencil/internal/types"
)

func TestLazyScopeContextCaching(t *testing.T) {
	s := NewLazyScope()
	let := &Let{Name: "x", Value: &IntImm{T: types.Int32, Value: 1}, Body: &Variable{Name: "x"}}

	root := s.Context()
	c1 := s.PushContext(let, "x", let.Value)
	s.PopContext("x")
	c2 := s.PushContext(let, "x", let.Value)
	s.PopContext("x")

	if c1 != c2 {
		t.Errorf("expected repeated PushContext on the same node to return the same child context, got %d and %d", c1, c2)
	}
	if s.Context() != root {
		t.Errorf("expected context to return to root after matching pops, got %d", s.Context())
	}
}

func TestLazyScopePopWithoutPushPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unbalanced pop")
		}
	}()
	s := NewLazyScope()
	s.PopContext("")
}

func TestLazyScopeLookupBinding(t *testing.T) {
	s := NewLazyScope()
	let := &Let{Name: "x", Value: &IntImm{T: types.Int32, Value: 7}}
	s.PushContext(let, "x", let.Value)
	v, ok := s.LookupBinding("x")
	if !ok {
		t.Fatal("expected binding for x")
	}
	if imm, ok := v.(*IntImm); !ok || imm.Value != 7 {
		t.Errorf("expected bound value 7, got %v", v)
	}
	s.PopContext("x")
	if _, ok := s.LookupBinding("x"); ok {
		t.Error("expected binding removed after pop")
	}
}

package server

import (
	"testing"

	"github.com/tidwall/assert"
)

func TestLowerCompare(t *testing.T) {
	if !lc("hello", "hello") {
		t.Fatal("failed")
	}
	if !lc("Hello", "hello") {
		t.Fatal("failed")
	}
	if !lc("HeLLo World", "hello world") {
		t.Fatal("failed")
	}
	if !lc("", "") {
		t.Fatal("failed")
	}
	if lc("hello", "") {
		t.Fatal("failed")
	}
	if lc("", "hello") {
		t.Fatal("failed")
	}
	if lc("HeLLo World", "Hello world") {
		t.Fatal("failed")
	}
}

func TestTokenFloat(t *testing.T) {
	vs, f, err := tokenfloat([]string{"1.5", "x"})
	assert.Assert(err == nil && f == 1.5)
	assert.Assert(len(vs) == 1 && vs[0] == "x")

	_, _, err = tokenfloat([]string{"abc"})
	assert.Assert(err != nil && err.Error() == "invalid argument 'abc'")

	_, _, err = tokenfloat(nil)
	assert.Assert(err == errInvalidNumberOfArguments)
}

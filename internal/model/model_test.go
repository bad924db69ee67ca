package model

import "testing"

// Most of Session's logic is a thin marshaling layer around an ONNX
// Runtime call and can't be exercised without the native library and a
// real model file present (disambig and segment test against a fake
// Runner instead, see their _test.go files). maxOne is the one piece of
// pure logic worth pinning down directly.
func TestMaxOne(t *testing.T) {
	if maxOne(0) != 1 {
		t.Fatal("maxOne(0) should avoid a divide by zero downstream")
	}
	if maxOne(5) != 5 {
		t.Fatal("maxOne(5) should be unchanged")
	}
}

// Package test contains helper functions for the package tests.
package test

import (
	"reflect"
	"testing"
)

// ExpectEquality compares value against expected and reports an error if
// they are not equal. The test continues.
func ExpectEquality[T comparable](t *testing.T, value T, expected T) bool {
	t.Helper()
	if value != expected {
		t.Errorf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expected)
		return false
	}
	return true
}

// DemandEquality is the same as ExpectEquality except that the test is
// stopped on failure.
func DemandEquality[T comparable](t *testing.T, value T, expected T) {
	t.Helper()
	if value != expected {
		t.Fatalf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expected)
	}
}

// ExpectSuccess checks that an error value is nil. A bool value of true is
// also considered success.
func ExpectSuccess(t *testing.T, v any) bool {
	t.Helper()
	switch v := v.(type) {
	case bool:
		if !v {
			t.Errorf("success test of type %T failed", v)
			return false
		}
	case error:
		if v != nil {
			t.Errorf("success test of type %T failed: %v", v, v)
			return false
		}
	case nil:
	default:
		t.Fatalf("unsupported type (%T) for success test", v)
	}
	return true
}

// ExpectFailure checks that an error value is not nil. A bool value of false
// is also considered failure.
func ExpectFailure(t *testing.T, v any) bool {
	t.Helper()
	switch v := v.(type) {
	case bool:
		if v {
			t.Errorf("failure test of type %T failed", v)
			return false
		}
	case error:
		if v == nil {
			t.Errorf("failure test of type %T failed", v)
			return false
		}
	case nil:
		t.Errorf("failure test failed: value is nil")
		return false
	default:
		t.Fatalf("unsupported type (%T) for failure test", v)
	}
	return true
}

// ExpectSlice compares two slices element by element.
func ExpectSlice[T any](t *testing.T, value []T, expected []T) bool {
	t.Helper()
	if !reflect.DeepEqual(value, expected) {
		t.Errorf("slice test failed: '%v' does not equal '%v'", value, expected)
		return false
	}
	return true
}

// DemandSuccess is the same as ExpectSuccess except that the test is stopped
// on failure.
func DemandSuccess(t *testing.T, v any) {
	t.Helper()
	if !ExpectSuccess(t, v) {
		t.FailNow()
	}
}

package cmp_test

import (
	"testing"

	"github.com/musecrm/museflow/pkg/utils/cmp"
)

func TestSliceContentEq(t *testing.T) {
	for name, testcase := range map[string]struct {
		a, b []string
		then bool
	}{
		"same order":                {a: []string{"a", "b"}, b: []string{"a", "b"}, then: true},
		"different order":           {a: []string{"a", "b"}, b: []string{"b", "a"}, then: true},
		"different multiplicity":    {a: []string{"a", "a", "b"}, b: []string{"a", "b", "b"}, then: false},
		"different length":          {a: []string{"a"}, b: []string{"a", "a"}, then: false},
		"nil and empty are the same": {a: nil, b: []string{}, then: true},
	} {
		t.Run(name, func(t *testing.T) {
			if actual := cmp.SliceContentEq(testcase.a, testcase.b); actual != testcase.then {
				t.Errorf("SliceContentEq(%v, %v): actual=%v, expect=%v", testcase.a, testcase.b, actual, testcase.then)
			}
		})
	}
}

func TestSliceEq(t *testing.T) {
	if !cmp.SliceEq([]int{1, 2, 3}, []int{1, 2, 3}) {
		t.Error("same slices are not equal")
	}
	if cmp.SliceEq([]int{1, 2, 3}, []int{3, 2, 1}) {
		t.Error("order is ignored")
	}
}

func TestMapEq(t *testing.T) {
	if !cmp.MapEq(map[string]int{"a": 1, "b": 2}, map[string]int{"b": 2, "a": 1}) {
		t.Error("same maps are not equal")
	}
	if cmp.MapEq(map[string]int{"a": 1}, map[string]int{"a": 2}) {
		t.Error("different values are equal")
	}
	if cmp.MapEq(map[string]int{"a": 1}, map[string]int{"b": 1}) {
		t.Error("different keys are equal")
	}
	if !cmp.MapEq(map[string]int(nil), map[string]int{}) {
		t.Error("nil and empty are not equal")
	}
}

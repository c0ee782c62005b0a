package cutlaw

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
)

// AssertFinite verifies every float reachable from v is finite.
//
// It walks structs, slices, arrays, maps and pointers, so it can be applied
// to any algorithm output directly:
//
//	out := cutlaw.SurfaceFinish{}.Calculate(in)
//	cutlaw.AssertFinite(t, out)
func AssertFinite(t testing.TB, v any) {
	t.Helper()

	var bad []string
	walkFloats(reflect.ValueOf(v), "out", func(path string, f float64) {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			bad = append(bad, fmt.Sprintf("  %s = %v", path, f))
		}
	})
	if len(bad) > 0 {
		t.Errorf("Non-finite output fields:\n%s", strings.Join(bad, "\n"))
	}
}

func walkFloats(v reflect.Value, path string, visit func(string, float64)) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		visit(path, v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		visit(path+".real", real(c))
		visit(path+".imag", imag(c))
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			walkFloats(v.Elem(), path, visit)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				walkFloats(v.Field(i), path+"."+v.Type().Field(i).Name, visit)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walkFloats(v.Index(i), fmt.Sprintf("%s[%d]", path, i), visit)
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			walkFloats(iter.Value(), fmt.Sprintf("%s[%v]", path, iter.Key()), visit)
		}
	}
}

// AssertWarning verifies out carries a warning with the given code.
func AssertWarning(t testing.TB, out WithWarnings, code string) {
	t.Helper()

	w := Warnings(out.WarningList())
	if !w.Has(code) {
		t.Errorf("Expected warning %s, got %q", code, out.WarningList())
	}
}

// AssertNoWarnings verifies out is clean.
func AssertNoWarnings(t testing.TB, out WithWarnings) {
	t.Helper()

	if list := out.WarningList(); len(list) > 0 {
		t.Errorf("Expected no warnings, got %q", list)
	}
}

// AssertSafetyBlock verifies err is a safety block on field.
// An empty field accepts a block on any field.
func AssertSafetyBlock(t testing.TB, err error, field string) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected SAFETY BLOCK on %q, got nil error", field)
	}
	var sb *SafetyBlockError
	if !errors.As(err, &sb) || !errors.Is(err, ErrSafetyBlock) {
		t.Fatalf("Expected SAFETY BLOCK, got %T: %v", err, err)
	}
	if field != "" && sb.Field != field {
		t.Errorf("SAFETY BLOCK on wrong field: got %q, want %q (%v)", sb.Field, field, err)
	}
}

// AssertRejected verifies vr is invalid with an error issue on field.
func AssertRejected(t testing.TB, vr ValidationResult, field string) {
	t.Helper()

	if vr.Valid {
		t.Fatalf("Expected %q to be rejected, validation passed with %d issue(s)", field, len(vr.Issues))
	}
	for _, issue := range vr.Errors() {
		if issue.Field == field {
			return
		}
	}
	t.Errorf("Expected an error on %q, got %+v", field, vr.Errors())
}

package types_test

import (
	"testing"

	"mica/internal/types"
)

func TestInternStableIDs(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	if got := in.Intern(types.Type{Kind: types.KindI32}); got != b.I32 {
		t.Fatalf("re-interning i32 gave %d, want builtin %d", got, b.I32)
	}
	arr := in.Array(b.I32)
	if again := in.Array(b.I32); again != arr {
		t.Fatalf("array-of-i32 interned twice: %d vs %d", arr, again)
	}
	point := in.Struct("Point")
	if again := in.Struct("Point"); again != point {
		t.Fatalf("struct Point interned twice: %d vs %d", point, again)
	}
	if other := in.Struct("Rect"); other == point {
		t.Fatalf("distinct structs share id %d", point)
	}
}

func TestInternInvalidIsNoTypeID(t *testing.T) {
	in := types.NewInterner()
	if got := in.Intern(types.Type{Kind: types.KindInvalid}); got != types.NoTypeID {
		t.Fatalf("interning invalid gave %d, want NoTypeID", got)
	}
	if _, ok := in.Lookup(types.NoTypeID); ok {
		t.Fatalf("NoTypeID must not resolve")
	}
}

func TestIndependentInternersAgree(t *testing.T) {
	// Two interners fed the same sequence hand out the same ids; that is
	// what makes concurrent compilations reproducible.
	a := types.NewInterner()
	b := types.NewInterner()
	for i := 0; i < 3; i++ {
		ai := a.Array(a.Builtins().I64)
		bi := b.Array(b.Builtins().I64)
		if ai != bi {
			t.Fatalf("iteration %d: ids diverge (%d vs %d)", i, ai, bi)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	in := types.NewInterner()
	arr := in.Array(in.Builtins().I32)
	point := in.Struct("Point")
	nested := in.Array(arr)

	out, err := types.Import(in.Export())
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if out.Len() != in.Len() {
		t.Fatalf("imported %d types, want %d", out.Len(), in.Len())
	}
	for _, id := range []types.TypeID{arr, point, nested} {
		want := in.MustLookup(id)
		got, ok := out.Lookup(id)
		if !ok || got != want {
			t.Fatalf("id %d changed across import: %+v vs %+v", id, got, want)
		}
	}
}

func TestImportRejectsBadTable(t *testing.T) {
	in := types.NewInterner()
	in.Struct("Point")
	table := in.Export()
	// Duplicate descriptor cannot replay to a fresh id.
	table = append(table, table[len(table)-1])
	if _, err := types.Import(table); err == nil {
		t.Fatalf("expected replay mismatch error")
	}
}

func TestString(t *testing.T) {
	in := types.NewInterner()
	cases := []struct {
		id   types.TypeID
		want string
	}{
		{in.Builtins().I32, "i32"},
		{in.Builtins().Bool, "bool"},
		{in.Array(in.Builtins().F64), "[]f64"},
		{in.Struct("Point"), "Point"},
		{in.Array(in.Array(in.Builtins().String)), "[][]string"},
	}
	for _, tc := range cases {
		if got := in.String(tc.id); got != tc.want {
			t.Fatalf("String(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

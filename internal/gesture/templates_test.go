package gesture

import "testing"

func TestBuiltinTemplatesAreValid(t *testing.T) {
	if err := Validate(Templates()); err != nil {
		t.Fatalf("builtin templates invalid: %v", err)
	}
	letters := Letters()
	if len(letters) != 26 {
		t.Fatalf("expected 26 letters, got %d", len(letters))
	}
	if letters[0] != "A" || letters[25] != "Z" {
		t.Fatalf("unexpected letter order: %v", letters)
	}
}

func TestTemplatesReturnsCopy(t *testing.T) {
	table := Templates()
	table["A"] = Reading{}
	delete(table, "B")

	a, ok := Lookup("A")
	if !ok || a[0] != 4000 {
		t.Fatalf("template table was mutated through copy: %v", a)
	}
	if _, ok := Lookup("B"); !ok {
		t.Fatalf("expected B to survive deletion from copy")
	}
}

func TestValidateRejectsBadKeys(t *testing.T) {
	cases := []map[string]Reading{
		{},
		{"a": {}},
		{"AB": {}},
		{"1": {}},
	}
	for _, table := range cases {
		if err := Validate(table); err == nil {
			t.Fatalf("expected error for %v", table)
		}
	}
}

func TestReadingFloats(t *testing.T) {
	got := Reading{1, 2, 3, 4, 5}.Floats()
	if len(got) != Fingers {
		t.Fatalf("expected %d values, got %d", Fingers, len(got))
	}
	for i, v := range got {
		if v != float64(i+1) {
			t.Fatalf("unexpected value at %d: %v", i, v)
		}
	}
}

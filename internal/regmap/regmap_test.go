package regmap

import "testing"

func TestLookupExactMatch(t *testing.T) {
	m := New([]Descriptor{
		{Name: "rax", Offset: 0, Width: 8},
		{Name: "eax", Offset: 0, Width: 4},
	})

	d, ok := m.Lookup(0, 4)
	if !ok || d.Name != "eax" {
		t.Fatalf("expected exact match 'eax', got %+v, %v", d, ok)
	}
}

func TestLookupSubWidthFallback(t *testing.T) {
	// Only the full 64-bit register is declared at this offset, as on an
	// architecture that doesn't expose narrower varnodes for it.
	m := New([]Descriptor{
		{Name: "x0", Offset: 0x20, Width: 8},
	})

	d, ok := m.Lookup(0x20, 4)
	if !ok || d.Name != "x0" {
		t.Fatalf("expected sub-width fallback to 'x0', got %+v, %v", d, ok)
	}

	d, ok = m.Lookup(0x20, 2)
	if !ok || d.Name != "x0" {
		t.Fatalf("expected sub-width fallback to 'x0' at width/4, got %+v, %v", d, ok)
	}

	d, ok = m.Lookup(0x20, 1)
	if !ok || d.Name != "x0" {
		t.Fatalf("expected sub-width fallback to 'x0' at width/8, got %+v, %v", d, ok)
	}
}

func TestLookupPrefersExactOverFallback(t *testing.T) {
	m := New([]Descriptor{
		{Name: "w0", Offset: 0x20, Width: 4},
		{Name: "x0", Offset: 0x20, Width: 8},
	})

	d, ok := m.Lookup(0x20, 4)
	if !ok || d.Name != "w0" {
		t.Fatalf("expected exact match to win over fallback, got %+v, %v", d, ok)
	}
}

func TestLookupMiss(t *testing.T) {
	m := New([]Descriptor{
		{Name: "rax", Offset: 0, Width: 8},
	})

	if _, ok := m.Lookup(0x1000, 4); ok {
		t.Fatal("expected no match at an unknown offset")
	}
	if _, ok := m.Lookup(0, 3); ok {
		t.Fatal("expected no match for a width with no power-of-two relation")
	}
}

func TestLookupEmptyMap(t *testing.T) {
	m := New(nil)
	if _, ok := m.Lookup(0, 8); ok {
		t.Fatal("expected empty map to never match")
	}
}

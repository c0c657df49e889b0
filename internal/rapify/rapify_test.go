package rapify

import (
	"testing"

	"github.com/BrettMayson/hemtt/internal/config"
	"github.com/BrettMayson/hemtt/internal/diag"
	"github.com/google/go-cmp/cmp"
)

func TestRoundTripSimpleEntry(t *testing.T) {
	cfg := &config.Config{
		Properties: []config.Property{
			{Kind: config.PropEntry, Name: "v", Value: config.Value{Kind: config.ValNumber, NumKind: config.NumInt32, Int: 5}},
		},
	}
	roundTrip(t, cfg)
}

func TestRoundTripAllValueKinds(t *testing.T) {
	cfg := &config.Config{
		Properties: []config.Property{
			{Kind: config.PropEntry, Name: "str", Value: config.Value{Kind: config.ValStr, Str: "hello"}},
			{Kind: config.PropEntry, Name: "i32", Value: config.Value{Kind: config.ValNumber, NumKind: config.NumInt32, Int: -42}},
			{Kind: config.PropEntry, Name: "i64", Value: config.Value{Kind: config.ValNumber, NumKind: config.NumInt64, Int: 1 << 40}},
			{Kind: config.PropEntry, Name: "f32", Value: config.Value{Kind: config.ValNumber, NumKind: config.NumFloat32, Float: 1.5}},
			{Kind: config.PropEntry, Name: "expr", Value: config.Value{Kind: config.ValExpression, Expression: "1 + 1"}},
			{
				Kind: config.PropEntry, Name: "arr",
				Value: config.Value{Kind: config.ValArray, Items: []config.Item{
					{Kind: config.ItemStr, Str: "a"},
					{Kind: config.ItemNumber, IsInt: true, Int: 1},
					{Kind: config.ItemNumber, Float: 2.5},
				}},
			},
			{
				Kind: config.PropEntry, Name: "plus",
				Value: config.Value{Kind: config.ValArray, ExpandAssign: true, Items: []config.Item{
					{Kind: config.ItemStr, Str: "b"},
				}},
			},
			{Kind: config.PropDelete, Name: "Gone"},
		},
	}
	roundTrip(t, cfg)
}

func TestRoundTripNestedLocalClass(t *testing.T) {
	cfg := &config.Config{
		Properties: []config.Property{
			{
				Kind: config.PropClass, Name: "Outer",
				Class: &config.Class{
					Kind: config.ClassLocal, Name: "Outer",
					Properties: []config.Property{
						{Kind: config.PropEntry, Name: "a", Value: config.Value{Kind: config.ValNumber, NumKind: config.NumInt32, Int: 1}},
						{
							Kind: config.PropClass, Name: "Inner",
							Class: &config.Class{
								Kind: config.ClassLocal, Name: "Inner",
								Properties: []config.Property{
									{Kind: config.PropEntry, Name: "b", Value: config.Value{Kind: config.ValStr, Str: "x"}},
								},
							},
						},
						{Kind: config.PropEntry, Name: "c", Value: config.Value{Kind: config.ValNumber, NumKind: config.NumInt32, Int: 2}},
					},
				},
			},
		},
	}
	roundTrip(t, cfg)
}

func TestRoundTripExternalClass(t *testing.T) {
	cfg := &config.Config{
		Properties: []config.Property{
			{Kind: config.PropClass, Name: "Fwd", Class: &config.Class{Kind: config.ClassExternal, Name: "Fwd"}},
		},
	}
	roundTrip(t, cfg)
}

func TestRoundTripNestedArrayItem(t *testing.T) {
	cfg := &config.Config{
		Properties: []config.Property{
			{
				Kind: config.PropEntry, Name: "matrix",
				Value: config.Value{Kind: config.ValArray, Items: []config.Item{
					{Kind: config.ItemArray, Array: []config.Item{
						{Kind: config.ItemNumber, IsInt: true, Int: 1},
						{Kind: config.ItemNumber, IsInt: true, Int: 2},
					}},
					{Kind: config.ItemArray, Array: []config.Item{
						{Kind: config.ItemNumber, IsInt: true, Int: 3},
					}},
				}},
			},
		},
	}
	roundTrip(t, cfg)
}

func TestDerapifyRejectsBadMagic(t *testing.T) {
	_, err := Derapify([]byte("nope"))
	if err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

func TestDerapifyRejectsUnknownSubcode(t *testing.T) {
	b, err := Rapify(&config.Config{Properties: []config.Property{
		{Kind: config.PropEntry, Name: "v", Value: config.Value{Kind: config.ValStr, Str: "x"}},
	}})
	if err != nil {
		t.Fatalf("Rapify: %v", err)
	}
	// Corrupt the subcode byte (right after the 0x01 entry code, header is
	// 16 bytes + compressed_int(1) count byte + 0x01 code byte).
	corrupt := append([]byte(nil), b...)
	corrupt[18] = 0xff
	if _, err := Derapify(corrupt); err == nil {
		t.Fatal("expected an error for an unknown subcode")
	}
}

func roundTrip(t *testing.T, cfg *config.Config) {
	t.Helper()
	b, err := Rapify(cfg)
	if err != nil {
		t.Fatalf("Rapify: %v", err)
	}
	if len(b) < 4 || string(b[:4]) != "\x00raP" {
		t.Fatalf("bad header: %x", b[:4])
	}
	got, err := Derapify(b)
	if err != nil {
		t.Fatalf("Derapify: %v", err)
	}
	want := stripSpans(cfg)
	got = stripSpans(got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// stripSpans zeroes fields Derapify never populates (Span, Path,
// ExpectedArray) so comparisons focus on the value content.
func stripSpans(cfg *config.Config) *config.Config {
	out := &config.Config{Properties: make([]config.Property, len(cfg.Properties))}
	for i, p := range cfg.Properties {
		out.Properties[i] = stripProperty(p)
	}
	return out
}

func stripProperty(p config.Property) config.Property {
	p.Span = diag.Span{}
	p.Path = ""
	p.ExpectedArray = false
	p.Value = stripValue(p.Value)
	if p.Class != nil {
		c := *p.Class
		c.Span = diag.Span{}
		c.Path = ""
		c.ParentSpan = diag.Span{}
		c.NameSpan = diag.Span{}
		children := make([]config.Property, len(c.Properties))
		for i, child := range c.Properties {
			children[i] = stripProperty(child)
		}
		c.Properties = children
		p.Class = &c
	}
	return p
}

func stripValue(v config.Value) config.Value {
	v.Span = diag.Span{}
	v.Path = ""
	v.FromMacro = false
	if v.Items != nil {
		items := make([]config.Item, len(v.Items))
		for i, it := range v.Items {
			items[i] = stripItem(it)
		}
		v.Items = items
	}
	return v
}

func stripItem(it config.Item) config.Item {
	it.Span = diag.Span{}
	if it.Array != nil {
		arr := make([]config.Item, len(it.Array))
		for i, nested := range it.Array {
			arr[i] = stripItem(nested)
		}
		it.Array = arr
	}
	return it
}

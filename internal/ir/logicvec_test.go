package ir

import "testing"

func TestParseVerilogNumberSized(t *testing.T) {
	cases := []struct {
		raw   string
		width int
		value uint64
	}{
		{"4'b1010", 4, 0xA},
		{"8'hFF", 8, 0xFF},
		{"8'd255", 8, 255},
		{"3'o7", 3, 7},
		{"'b101", 32, 5},
		{"42", 32, 42},
	}
	for _, c := range cases {
		v, err := ParseVerilogNumber(c.raw)
		if err != nil {
			t.Fatalf("ParseVerilogNumber(%q): %v", c.raw, err)
		}
		if v.Width() != c.width {
			t.Errorf("%q: width = %d, want %d", c.raw, v.Width(), c.width)
		}
		got, ok := v.ToUint64()
		if !ok || got != c.value {
			t.Errorf("%q: value = %v (%v), want %d", c.raw, got, ok, c.value)
		}
	}
}

func TestParseVerilogNumberXZ(t *testing.T) {
	v, err := ParseVerilogNumber("4'b10x1")
	if err != nil {
		t.Fatal(err)
	}
	if v.AllKnown() {
		t.Fatalf("expected an unknown bit in %v", v)
	}
	if v.Bits[1] != BitX {
		t.Errorf("bit 1 = %v, want X", v.Bits[1])
	}
}

func TestLogicVecAndConstProp(t *testing.T) {
	a := NewLogicVec(1, 1)
	b := NewLogicVec(1, 1)
	got := a.And(b)
	if v, ok := got.ToUint64(); !ok || v != 1 {
		t.Fatalf("1 AND 1 = %v, want 1", got)
	}

	c := NewLogicVec(1, 0)
	got = a.And(c)
	if v, ok := got.ToUint64(); !ok || v != 0 {
		t.Fatalf("1 AND 0 = %v, want 0", got)
	}
}

func TestLogicVecAddWraps(t *testing.T) {
	a := NewLogicVec(4, 15)
	b := NewLogicVec(4, 1)
	got := a.Add(b, 4)
	if v, ok := got.ToUint64(); !ok || v != 0 {
		t.Fatalf("15+1 at width 4 = %v, want 0 (wrap)", got)
	}
}

func TestMuxSelectsNonZero(t *testing.T) {
	a := NewLogicVec(4, 1)
	b := NewLogicVec(4, 2)
	if v, _ := Mux(NewLogicVec(1, 0), a, b).ToUint64(); v != 1 {
		t.Errorf("Mux(0, a, b) = %d, want a=1", v)
	}
	if v, _ := Mux(NewLogicVec(1, 1), a, b).ToUint64(); v != 2 {
		t.Errorf("Mux(1, a, b) = %d, want b=2", v)
	}
}

func TestConcatOrderAndSlice(t *testing.T) {
	hi := NewLogicVec(4, 0xA)
	lo := NewLogicVec(4, 0xB)
	cat := Concat(hi, lo)
	if v, _ := cat.ToUint64(); v != 0xAB {
		t.Fatalf("Concat(hi, lo) = %x, want AB", v)
	}
	if v, _ := cat.Slice(3, 0).ToUint64(); v != 0xB {
		t.Errorf("Slice(3,0) = %x, want B", v)
	}
	if v, _ := cat.Slice(7, 4).ToUint64(); v != 0xA {
		t.Errorf("Slice(7,4) = %x, want A", v)
	}
}

func TestVHDLBitString(t *testing.T) {
	v, err := ParseVHDLBitString(`X"FF"`)
	if err != nil {
		t.Fatal(err)
	}
	if v.Width() != 8 {
		t.Fatalf("width = %d, want 8", v.Width())
	}
	if got, _ := v.ToUint64(); got != 0xFF {
		t.Errorf("value = %x, want FF", got)
	}
}

func TestVHDLBasedLiteral(t *testing.T) {
	v, err := ParseVHDLBasedLiteral("16#FF#")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := v.ToUint64(); got != 0xFF {
		t.Errorf("value = %x, want FF", got)
	}
}

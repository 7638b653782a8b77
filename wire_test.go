package main

import (
	"bytes"
	"testing"
)

func TestWireVarintRoundTrip(t *testing.T) {
	tests := []uint64{0, 1, 127, 128, 300, 1 << 40, ^uint64(0)}
	for _, v := range tests {
		var w wireWriter
		w.WriteVarint(5, v)
		r := newWireReader(w.Bytes())
		fieldNum, wireType, err := r.ReadTag()
		if err != nil {
			t.Fatalf("ReadTag(%d): %v", v, err)
		}
		if fieldNum != 5 || wireType != wireVarint {
			t.Fatalf("tag mismatch for %d: got (%d,%d)", v, fieldNum, wireType)
		}
		got, err := r.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("ReadVarint: got %d, want %d", got, v)
		}
	}
}

func TestWireDoubleRoundTrip(t *testing.T) {
	var w wireWriter
	w.WriteDouble(4, 3.14159265)
	r := newWireReader(w.Bytes())
	if _, _, err := r.ReadTag(); err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadDouble()
	if err != nil {
		t.Fatal(err)
	}
	if got != 3.14159265 {
		t.Errorf("ReadDouble: got %v, want %v", got, 3.14159265)
	}
}

func TestWireBytesRoundTrip(t *testing.T) {
	var w wireWriter
	w.WriteString(2, "hello world")
	r := newWireReader(w.Bytes())
	if _, _, err := r.ReadTag(); err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Errorf("ReadString: got %q, want %q", got, "hello world")
	}
}

func TestWireSkipUnknownTag(t *testing.T) {
	var w wireWriter
	w.WriteVarint(9, 42)
	w.WriteString(2, "kept")
	r := newWireReader(w.Bytes())

	fieldNum, wireType, err := r.ReadTag()
	if err != nil {
		t.Fatal(err)
	}
	if fieldNum != 9 {
		t.Fatalf("expected field 9 first, got %d", fieldNum)
	}
	if err := r.Skip(wireType); err != nil {
		t.Fatal(err)
	}

	fieldNum, _, err = r.ReadTag()
	if err != nil {
		t.Fatal(err)
	}
	if fieldNum != 2 {
		t.Fatalf("expected field 2 after skip, got %d", fieldNum)
	}
	got, err := r.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if got != "kept" {
		t.Errorf("got %q, want %q", got, "kept")
	}
}

func TestWireVarintOverflow(t *testing.T) {
	// 11 continuation bytes: always-set high bit, one more than allowed.
	buf := bytes.Repeat([]byte{0x80}, maxVarintBytes+1)
	r := newWireReader(buf)
	_, err := r.ReadVarint()
	if kind, ok := kindOf(err); !ok || kind != ErrMalformedWire {
		t.Fatalf("expected MalformedWire, got %v", err)
	}
}

func TestWireTruncatedBytes(t *testing.T) {
	var w wireWriter
	w.putUvarint(20) // claims 20 bytes follow, but none do
	r := newWireReader(w.Bytes())
	_, err := r.ReadBytes()
	if kind, ok := kindOf(err); !ok || kind != ErrMalformedWire {
		t.Fatalf("expected MalformedWire, got %v", err)
	}
}

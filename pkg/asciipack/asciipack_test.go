// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package asciipack

import "testing"

func TestCompress(t *testing.T) {
	got, err := Compress(0b0011_1110, 0b0111_1111, 2)
	if err != nil {
		t.Fatalf("Compress error = %v", err)
	}
	if want := byte(0b1111_1011); got != want {
		t.Errorf("Compress = %08b, want %08b", got, want)
	}
}

func TestCompressRejectsNonASCII(t *testing.T) {
	if _, err := Compress(255, 255, 1); err != ErrNotASCII {
		t.Errorf("err = %v, want ErrNotASCII", err)
	}
}

func TestDecompress(t *testing.T) {
	got := Decompress(0b1111_1100, 0b1111_1100, 2)
	if want := byte(0b0011_1111); got != want {
		t.Errorf("Decompress = %08b, want %08b", got, want)
	}
}

func TestCompressSlice(t *testing.T) {
	in := []byte{0b0111_1111, 0b0110_0001, 0b0111_1111}
	want := []byte{0b1111_1111, 0b1000_0111, 0b1111_1000}

	got, err := CompressSlice(in)
	if err != nil {
		t.Fatalf("CompressSlice error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %08b, want %08b", i, got[i], want[i])
		}
	}
}

func TestDecompressSlice(t *testing.T) {
	in := []byte{0b1111_1111, 0b1000_0111, 0b1111_1000}
	want := []byte{0b0111_1111, 0b0110_0001, 0b0111_1111}

	got := DecompressSlice(in)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %08b, want %08b", i, got[i], want[i])
		}
	}
}

func TestCompressDecompressSliceRoundTrip(t *testing.T) {
	in := []byte("hello there general kenobi")

	compressed, err := CompressSlice(in)
	if err != nil {
		t.Fatalf("CompressSlice error = %v", err)
	}
	if len(compressed) >= len(in) {
		t.Errorf("compressed len = %d, want < %d", len(compressed), len(in))
	}

	decompressed := DecompressSlice(compressed)
	if string(decompressed[:len(in)]) != string(in) {
		t.Errorf("round trip = %q, want %q", decompressed[:len(in)], in)
	}
}

package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"1000.00", 100000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{123, "1.23"},
		{100, "1.00"},
		{1, "0.01"},
		{0, "0.00"},
		{-5, "-0.05"},
		{69950, "699.50"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.cents); got != tc.want {
			t.Fatalf("FormatCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1050})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "10.50" {
		t.Fatalf("expected 10.50, got %s", b)
	}

	var m Money
	if err := json.Unmarshal([]byte("10.50"), &m); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if m.Cents != 1050 {
		t.Fatalf("expected 1050 cents, got %d", m.Cents)
	}

	if err := json.Unmarshal([]byte(`"3,99"`), &m); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if m.Cents != 399 {
		t.Fatalf("expected 399 cents, got %d", m.Cents)
	}

	if err := json.Unmarshal([]byte(`"-1"`), &m); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestMoneySumStaysExact(t *testing.T) {
	// 0.10 added a hundred times must be exactly 10.00.
	var total int64
	for i := 0; i < 100; i++ {
		total += 10
	}
	if FormatCents(total) != "10.00" {
		t.Fatalf("expected 10.00, got %s", FormatCents(total))
	}
}

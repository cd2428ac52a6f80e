package core

import (
	"strings"
	"testing"
)

func TestDraftValidate(t *testing.T) {
	good := Draft{Type: Expense, Amount: 9.99, Description: "coffee", Date: "2024-01-02"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Draft{
		{Type: "transfer", Amount: 1, Date: "2024-01-02"},
		{Type: Income, Amount: 0, Date: "2024-01-02"},
		{Type: Income, Amount: -3, Date: "2024-01-02"},
		{Type: Income, Amount: 1, Date: "2024-1-2"},
		{Type: Income, Amount: 1, Date: "2024-13-01"},
		{Type: Income, Amount: 1, Date: ""},
		{Type: Income, Amount: 1, Date: "2024-01-02", Description: strings.Repeat("x", 201)},
	}
	for i, d := range bads {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestValidDate(t *testing.T) {
	cases := []struct {
		date string
		ok   bool
	}{
		{"2024-01-31", true},
		{"2024-02-29", true},  // leap year
		{"2023-02-29", false}, // not a leap year
		{"2024-00-10", false},
		{"24-01-01", false},
		{"2024/01/01", false},
	}
	for i, tc := range cases {
		if got := ValidDate(tc.date); got != tc.ok {
			t.Fatalf("case %d (%q): expected %v, got %v", i, tc.date, tc.ok, got)
		}
	}
}

func TestPatchApplyTo(t *testing.T) {
	base := Transaction{ID: "1", Type: Expense, Amount: 10, Description: "old", Date: "2024-01-01", CreatedAt: "2024-01-01T00:00:00Z"}

	amount := 20.5
	patched := Patch{Amount: &amount}.ApplyTo(base)
	if patched.Amount != 20.5 {
		t.Fatalf("expected amount updated, got %v", patched.Amount)
	}
	if patched.ID != "1" || patched.Type != Expense || patched.Description != "old" || patched.Date != "2024-01-01" {
		t.Fatalf("expected omitted fields preserved, got %+v", patched)
	}

	typ := Income
	desc := "new"
	date := "2024-02-02"
	full := Patch{Type: &typ, Description: &desc, Date: &date}.ApplyTo(base)
	if full.Type != Income || full.Description != "new" || full.Date != "2024-02-02" || full.Amount != 10 {
		t.Fatalf("got %+v", full)
	}
}

func TestPatchValidate(t *testing.T) {
	badAmount := -1.0
	if err := (Patch{Amount: &badAmount}).Validate(); err == nil {
		t.Fatal("expected error for negative amount")
	}
	badType := TransactionType("transfer")
	if err := (Patch{Type: &badType}).Validate(); err == nil {
		t.Fatal("expected error for unknown type")
	}
	badDate := "2024-1-1"
	if err := (Patch{Date: &badDate}).Validate(); err == nil {
		t.Fatal("expected error for malformed date")
	}
	if err := (Patch{}).Validate(); err != nil {
		t.Fatalf("empty patch must be valid, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.34", 12.34, true},
		{"12,34", 12.34, true},
		{" 5 ", 5, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"+3", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d (%q): expected %v, got %v err=%v", i, tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q): expected error", i, tc.in)
		}
	}
}

package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTaxIDValidCPF(t *testing.T) {
	cases := []string{
		"964.715.320-16",
		"96471532016",
		"964 715 320 16",
	}

	for _, raw := range cases {
		id, err := ParseTaxID(raw)
		if err != nil {
			t.Fatalf("ParseTaxID(%q) returned error: %v", raw, err)
		}
		if id.String() != "96471532016" {
			t.Fatalf("ParseTaxID(%q) = %q, want normalized digits", raw, id)
		}
		if !id.IsCPF() || id.IsCNPJ() {
			t.Fatalf("ParseTaxID(%q) misclassified length class", raw)
		}
	}
}

func TestParseTaxIDInvalidCPFChecksum(t *testing.T) {
	if _, err := ParseTaxID("964.715.320-36"); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestParseTaxIDRejectsRepeatedDigits(t *testing.T) {
	for d := byte('0'); d <= '9'; d++ {
		cpf := strings.Repeat(string(d), 11)
		if _, err := ParseTaxID(cpf); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("ParseTaxID(%q) = %v, want ErrInvalidDocument", cpf, err)
		}
		cnpj := strings.Repeat(string(d), 14)
		if _, err := ParseTaxID(cnpj); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("ParseTaxID(%q) = %v, want ErrInvalidDocument", cnpj, err)
		}
	}
}

func TestParseTaxIDWrongLength(t *testing.T) {
	for _, raw := range []string{"", "123", "123456789012", "123456789012345"} {
		if _, err := ParseTaxID(raw); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("ParseTaxID(%q) = %v, want ErrInvalidDocument", raw, err)
		}
	}
}

func TestParseTaxIDValidCNPJ(t *testing.T) {
	// Well-known checksum-valid CNPJ (11.222.333/0001-81).
	id, err := ParseTaxID("11.222.333/0001-81")
	if err != nil {
		t.Fatalf("ParseTaxID returned error: %v", err)
	}
	if id.String() != "11222333000181" {
		t.Fatalf("ParseTaxID normalized to %q", id)
	}
	if !id.IsCNPJ() {
		t.Fatal("expected CNPJ length class")
	}
}

func TestParseTaxIDCNPJCheckDigitMutation(t *testing.T) {
	valid := "11222333000181"

	for _, pos := range []int{12, 13} {
		for d := byte('0'); d <= '9'; d++ {
			if valid[pos] == d {
				continue
			}
			mutated := valid[:pos] + string(d) + valid[pos+1:]
			if _, err := ParseTaxID(mutated); !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("ParseTaxID(%q) = %v, want ErrInvalidDocument", mutated, err)
			}
		}
	}
}

func TestParseCPFRejectsCNPJ(t *testing.T) {
	if _, err := ParseCPF("11.222.333/0001-81"); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument for CNPJ input, got %v", err)
	}
}

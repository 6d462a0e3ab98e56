package output

import (
	"bytes"
	"testing"
)

type sample struct {
	Name    string            `json:"name"`
	Pass    bool              `json:"pass"`
	Score   int               `json:"score,omitempty"`
	Ratio   float64           `json:"ratio,omitempty"`
	Tags    []string          `json:"tags,omitempty"`
	Binding map[string]string `json:"binding,omitempty"`
	hidden  string
}

func TestDeterministicEncode_Stable(t *testing.T) {
	v := sample{
		Name:    "adapter",
		Pass:    true,
		Score:   3,
		Binding: map[string]string{"Target": "Target", "Adaptee": "Adaptee", "Adapter": "Adapter"},
	}

	first, err := DeterministicEncode(v)
	if err != nil {
		t.Fatalf("DeterministicEncode() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := DeterministicEncode(v)
		if err != nil {
			t.Fatalf("DeterministicEncode() error = %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding not stable:\n%s\n%s", first, again)
		}
	}
}

func TestDeterministicEncode_SortedKeys(t *testing.T) {
	v := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	got, err := DeterministicEncode(v)
	if err != nil {
		t.Fatalf("DeterministicEncode() error = %v", err)
	}
	want := `{"alpha":2,"mid":3,"zeta":1}`
	if string(got) != want {
		t.Errorf("DeterministicEncode() = %s, want %s", got, want)
	}
}

func TestDeterministicEncode_OmitsEmpty(t *testing.T) {
	v := sample{Name: "x", Pass: false}
	got, err := DeterministicEncode(v)
	if err != nil {
		t.Fatalf("DeterministicEncode() error = %v", err)
	}
	want := `{"name":"x","pass":false}`
	if string(got) != want {
		t.Errorf("DeterministicEncode() = %s, want %s", got, want)
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.23456789, 1.234568},
		{0.5, 0.5},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundFloat(tt.in); got != tt.want {
			t.Errorf("RoundFloat(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

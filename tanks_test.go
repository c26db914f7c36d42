package thf

import (
	"errors"
	"testing"
)

func TestTanksFlow(t *testing.T) {
	tanks := NewTanks(&Tank{Name: "Main", FuelMass: 10}, &Tank{Name: "Aux", FuelMass: 1})
	if !tanks.HasMassSource("Main") || tanks.HasMassSource("main") {
		t.Fatal("incorrect lookup")
	}
	if names := tanks.Names(); len(names) != 2 || names[0] != "Aux" || names[1] != "Main" {
		t.Fatalf("incorrect names %v", names)
	}
	delta, err := tanks.Flow("Main", -0.5, 4)
	if err != nil || delta != -2 {
		t.Fatalf("incorrect flow %f (%v)", delta, err)
	}
	if main, _ := tanks.Get("Main"); main.FuelMass != 8 {
		t.Fatalf("incorrect fuel mass %s", main)
	}
	// Cannot deplete more than what is left.
	if delta, _ = tanks.Flow("Aux", -1, 10); delta != -1 {
		t.Fatalf("incorrect clamped flow %f", delta)
	}
	if aux, _ := tanks.Get("Aux"); aux.FuelMass != 0 {
		t.Fatalf("tank should be empty: %s", aux)
	}
	if _, err = tanks.Flow("Nope", -1, 1); !errors.Is(err, ErrUnknownMassSource) {
		t.Fatalf("expected ErrUnknownMassSource, got %v", err)
	}
}

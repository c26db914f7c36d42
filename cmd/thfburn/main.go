package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	thf "github.com/ChristopherRabotin/GMAT-sub037"
	kitlog "github.com/go-kit/log"
	"github.com/schollz/progressbar/v3"
)

// This integrates the tank masses and the velocity increment of a spacecraft across a
// thrust history file. The integration is split at every segment boundary.

const (
	defaultScenario = "~~unset~~"
)

var (
	scenario string
	dryMass  float64
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file")
	flag.Float64Var(&dryMass, "dry", 0, "dry mass of the spacecraft in kg")
	flag.BoolVar(&verbose, "verbose", false, "log every integration chunk")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	logger := kitlog.NewNopLogger()
	if verbose {
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	}

	tc := thf.NewTimeSystemConverter()
	scen, err := thf.LoadScenario(scenario, tc)
	if err != nil {
		log.Fatal(err)
	}
	file := thf.NewThrustHistoryFile(scen.File, scen.Config, tc, nil, logger)
	tanks, err := scen.Apply(file)
	if err != nil {
		log.Fatal(err)
	}

	burn := NewBurn(file, tanks, dryMass, scen.Start, kitlog.With(logger, "subsys", "burn"))
	bar := progressbar.Default(int64(math.Ceil((scen.End - scen.Start) * thf.SecondsPerDay)))
	burn.Progress = func(seconds float64) { bar.Add64(int64(seconds)) }
	burn.PropagateUntil(scen.End, scen.Step.Seconds())
	bar.Finish()

	fmt.Printf("\nΔv = %.6f (thrust units per kg, or acceleration units for acceleration models)\n", burn.DeltaV())
	for _, name := range tanks.Names() {
		tank, _ := tanks.Get(name)
		fmt.Printf("%s\n", tank)
	}
	if !file.Engine().DepletesMass() {
		fmt.Println("mass depletion disabled: no mass source identified")
	}
}

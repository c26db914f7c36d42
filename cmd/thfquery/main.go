package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"

	thf "github.com/ChristopherRabotin/GMAT-sub037"
	"github.com/ChristopherRabotin/GMAT-sub037/metrics"
	kitlog "github.com/go-kit/log"
	"github.com/schollz/progressbar/v3"
)

// This samples a thrust history file over the scenario span and writes the results as CSV.
// The fuel of the scenario tanks is depleted sample after sample.

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02 15:04:05.000"
)

var (
	scenario string
	output   string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file")
	flag.StringVar(&output, "out", "thfquery.csv", "CSV output file")
	flag.BoolVar(&verbose, "verbose", false, "log every load and configuration step")
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

	var recorder *metrics.Recorder
	if scen.MetricsListen != "" {
		recorder = metrics.NewRecorder(nil)
		file.SetObserver(recorder)
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		go func() {
			if err := http.ListenAndServe(scen.MetricsListen, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("metrics endpoint: %s", err)
			}
		}()
	}

	tanks, err := scen.Apply(file)
	if err != nil {
		log.Fatal(err)
	}

	fd, err := os.Create(output)
	if err != nil {
		log.Fatal(err)
	}
	defer fd.Close()
	w := csv.NewWriter(fd)
	w.Write([]string{"epoch_a1_mjd", "utc", "segment", "vx", "vy", "vz", "mdot", "magnitude", "ra_deg", "dec_deg", "tank", "fuel_kg"})

	samples := scen.Samples()
	bar := progressbar.Default(int64(samples))
	covered := 0
	for i := 0; i < samples; i++ {
		epoch := scen.Epoch(i)
		rslt := file.Query(epoch)
		if rslt.Covered {
			covered++
		}
		ra, dec := rslt.Direction()
		fuel := ""
		if rslt.Tank != "" {
			// Rectangle rule over the sampling step.
			if _, err := tanks.Flow(rslt.Tank, rslt.Mdot, scen.Step.Seconds()); err != nil {
				log.Fatal(err)
			}
			tank, _ := tanks.Get(rslt.Tank)
			fuel = fmtFloat(tank.FuelMass)
		}
		w.Write([]string{
			strconv.FormatFloat(epoch, 'f', 12, 64),
			thf.MJDToTime(tc.ConvertEpoch(epoch, thf.A1, thf.UTC)).Format(dateFormat),
			rslt.Segment,
			fmtFloat(rslt.Vector[0]), fmtFloat(rslt.Vector[1]), fmtFloat(rslt.Vector[2]),
			fmtFloat(rslt.Mdot), fmtFloat(rslt.Magnitude()), fmtFloat(ra), fmtFloat(dec),
			rslt.Tank, fuel,
		})
		bar.Add(1)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\n%d samples (%d covered) written to %s\n", samples, covered, output)
	if tank, ok := file.ActiveTankName(); ok {
		fmt.Printf("last active tank: %s\n", tank)
	}

	if recorder != nil {
		fmt.Printf("serving metrics on %s/metrics until interrupted\n", scen.MetricsListen)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		<-ctx.Done()
	}
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

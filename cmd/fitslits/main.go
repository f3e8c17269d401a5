// Package main fits slit width and separation to a histogram exported by a
// headless run.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pthm-cable/slits/config"
	"github.com/pthm-cable/slits/optics"
	"github.com/pthm-cable/slits/telemetry"
)

func main() {
	// CLI flags
	histPath := flag.String("histogram", "", "histogram.csv written by --output-dir")
	configPath := flag.String("config", "", "Config YAML the run used (empty = use defaults)")
	typeName := flag.String("type", "", "Particle type bounding the search (empty = config particle type)")
	maxEvals := flag.Int("max-evals", 2000, "Nelder-Mead function evaluations")
	outPath := flag.String("out", "", "Write the config with the fitted geometry to this path")
	flag.Parse()

	if *histPath == "" {
		log.Fatal("--histogram is required")
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	name := *typeName
	if name == "" {
		name = cfg.Experiment.ParticleType
	}
	if name == "" {
		name = cfg.ParticleTypes[0].Name
	}
	pt, ok := optics.FindParticleType(cfg.ParticleTypes, name)
	if !ok {
		log.Fatalf("unknown particle type %q", name)
	}

	rows, err := telemetry.ReadHistogram(*histPath)
	if err != nil {
		log.Fatalf("failed to read histogram: %v", err)
	}
	obs, err := NewObservation(rows)
	if err != nil {
		log.Fatalf("%s: %v", *histPath, err)
	}

	base := cfg.Derived.InitialParams
	pv := NewParamVector(pt)
	model := &Model{
		Obs:         obs,
		Floor:       cfg.Histogram.Floor,
		AcceptFloor: cfg.Sampler.AcceptFloor,
	}
	opts := DefaultFitOptions()
	opts.MaxEvals = *maxEvals

	fmt.Printf("Fitting %d particles over %d bins (%s, λ=%s, L=%s)\n",
		int(obs.Total), len(obs.Centers), pt.Name,
		optics.FormatLength(base.Wavelength), optics.FormatLength(base.ScreenDistance))

	start := time.Now()
	res := Fit(model, base, pv, opts)
	if res.Err != nil {
		log.Printf("refinement stopped: %v", res.Err)
	}

	fmt.Printf("Fit complete in %s\n\n", time.Since(start).Round(time.Millisecond))
	fmt.Print(Report(res, obs, model.Expected(res.Params)))

	if *outPath != "" {
		cfg.Experiment.ParticleType = ""
		cfg.Experiment.Params = res.Params
		cfg.Derived.InitialParams = res.Params
		if err := cfg.WriteYAML(*outPath); err != nil {
			log.Fatalf("failed to write config: %v", err)
		}
		fmt.Printf("Fitted config written to %s\n", *outPath)
	}
}

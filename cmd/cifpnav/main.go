// cmd/cifpnav/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// cifpnav imports instrument approach procedures, checks them, and flies
// them: either with a simulated aircraft, from recorded position reports,
// or for clients of its HTTP interface.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/nav"
	"github.com/cifpnav/cifpnav/util"
)

var (
	configPath       = flag.String("config", defaultConfigPath(), "configuration file")
	writeConfig      = flag.Bool("writeconfig", false, "write the current configuration to the configuration file and exit")
	logLevel         = flag.String("loglevel", "", "logging level: debug, info, warn, error")
	logDir           = flag.String("logdir", "", "log file directory")
	dbPath           = flag.String("db", "", "procedure database")
	bundlePath       = flag.String("bundle", "", "read procedures from this bundle rather than the database")
	importFiles      = flag.String("import", "", "comma-separated procedure files and bundles to import into the database")
	exportBundle     = flag.String("export", "", "write all procedures to this bundle")
	fetchCIFP        = flag.String("fetch-cifp", "", "download the current FAA CIFP to this file and import it")
	lintAirports     = flag.String("lint", "", "check the approaches at these airports (comma-separated, or \"all\")")
	listAirport      = flag.String("list", "", "list the approaches at the given airport")
	listJSON         = flag.Bool("json", false, "list approaches as JSON")
	dumpRoute        = flag.String("dump", "", "print the assembled route for AIRPORT/APPROACH/TRANSITION")
	simulate         = flag.String("simulate", "", "fly APPROACH/TRANSITION at the -airport with a simulated aircraft")
	replayFile       = flag.String("replay", "", "fly -approach using the position reports in this file (- for stdin)")
	airport          = flag.String("airport", "", "airport for -simulate and -replay")
	approach         = flag.String("approach", "", "APPROACH/TRANSITION for -replay")
	flyOptional      = flag.Bool("fly", false, "fly optional procedure turns and holds")
	startOffset      = flag.String("offset", "-3,-3", "simulated aircraft start position, in nm east,north of the transition start")
	startAltitude    = flag.Float64("altitude", 3000, "simulated aircraft altitude above the airport")
	groundSpeed      = flag.Float64("gs", 140, "simulated aircraft ground speed")
	noise            = flag.Float64("noise", 0, "standard deviation of simulated position error in nm")
	seed             = flag.Int64("seed", 0, "random seed for -noise")
	duration         = flag.Duration("duration", 90*time.Minute, "maximum simulated flight time")
	httpAddress      = flag.String("http", "", "serve guidance over HTTP at this address (\"default\" for the configured one)")
	navLog           = flag.Bool("navlog", false, "enable navigation logging")
	navLogCategories = flag.String("navlog-categories", "all", "navigation log categories (comma-separated: state,step,fillet,hold,assembly,guidance)")
	navLogApproach   = flag.String("navlog-approach", "", "filter navigation logs to only show this approach (empty = show all)")
)

func main() {
	flag.Parse()

	config, err := LoadOrMakeDefaultConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *configPath, err)
		os.Exit(1)
	}
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}
	if *logDir != "" {
		config.LogDir = *logDir
	}
	if *dbPath != "" {
		config.Database = *dbPath
	}
	if *bundlePath != "" {
		config.Bundle = *bundlePath
	}

	lg := log.New(config.LogLevel, config.LogDir)
	defer lg.CatchAndReportCrash()

	nav.InitNavLog(*navLog, *navLogCategories, *navLogApproach)

	if *writeConfig {
		if err := config.Save(*configPath, lg); err != nil {
			fatal(lg, err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := OpenStore(config, lg)
	if err != nil {
		fatal(lg, err)
	}
	defer store.Close()

	switch {
	case *importFiles != "":
		var e util.ErrorLogger
		err := store.Import(ctx, strings.Split(*importFiles, ","), &e)
		e.PrintErrors(os.Stderr, lg)
		if err != nil {
			fatal(lg, err)
		}

	case *fetchCIFP != "":
		if err := FetchCIFP(ctx, config.CIFPPage, *fetchCIFP, lg); err != nil {
			fatal(lg, err)
		}
		var e util.ErrorLogger
		err := store.Import(ctx, []string{*fetchCIFP}, &e)
		e.PrintErrors(os.Stderr, lg)
		if err != nil {
			fatal(lg, err)
		}

	case *exportBundle != "":
		if err := store.Export(ctx, *exportBundle); err != nil {
			fatal(lg, err)
		}

	case *lintAirports != "":
		var airports []string
		if *lintAirports != "all" {
			airports = strings.Split(*lintAirports, ",")
		}
		e, err := Lint(ctx, store, airports, &config.Tuning)
		if err != nil {
			fatal(lg, err)
		}
		if e.HaveErrors() {
			e.PrintErrors(os.Stderr, lg)
			os.Exit(1)
		}

	case *listAirport != "":
		aps := loadAirport(ctx, store, *listAirport, lg)
		if *listJSON {
			b, err := ApproachesJSON(*listAirport, aps)
			if err != nil {
				fatal(lg, err)
			}
			fmt.Println(string(b))
		} else {
			ListApproaches(os.Stdout, *listAirport, aps)
		}

	case *dumpRoute != "":
		ap, tr, ok := strings.Cut(*dumpRoute, "/")
		if !ok {
			fatal(lg, fmt.Errorf("%s: expected AIRPORT/APPROACH/TRANSITION", *dumpRoute))
		}
		app, tr, err := ParseSimulateTarget(tr)
		if err != nil {
			fatal(lg, err)
		}
		n := nav.NewNavigator(loadAirport(ctx, store, ap, lg), config.Tuning, lg)
		req, err := n.Select(app, tr)
		for err == nil && req != nil {
			req, err = n.Decide(*flyOptional)
		}
		if err != nil {
			fatal(lg, err)
		}
		DumpRoute(n.Route())

	case *simulate != "":
		app, tr, err := ParseSimulateTarget(*simulate)
		if err != nil {
			fatal(lg, err)
		}
		var off [2]float32
		if _, err := fmt.Sscanf(*startOffset, "%f,%f", &off[0], &off[1]); err != nil {
			fatal(lg, fmt.Errorf("%s: %w", *startOffset, err))
		}
		opt := SimulateOptions{
			Approach:       app,
			Transition:     tr,
			FlyOptional:    *flyOptional,
			Offset:         off,
			Altitude:       float32(*startAltitude),
			GroundSpeed:    float32(*groundSpeed),
			Noise:          float32(*noise),
			Seed:           *seed,
			Step:           time.Second,
			Duration:       *duration,
			ReportInterval: 15 * time.Second,
		}
		aps := loadAirport(ctx, store, requireAirport(lg), lg)
		if err := Simulate(os.Stdout, aps, opt, config.Tuning, lg); err != nil {
			fatal(lg, err)
		}

	case *replayFile != "":
		app, tr, err := ParseSimulateTarget(*approach)
		if err != nil {
			fatal(lg, err)
		}
		f := os.Stdin
		if *replayFile != "-" {
			if f, err = os.Open(*replayFile); err != nil {
				fatal(lg, err)
			}
			defer f.Close()
		}
		aps := loadAirport(ctx, store, requireAirport(lg), lg)
		if err := Replay(os.Stdout, f, aps, app, tr, *flyOptional, config.Tuning, lg); err != nil {
			fatal(lg, err)
		}

	case *httpAddress != "":
		addr := *httpAddress
		if addr == "default" {
			addr = config.HTTPAddress
		}
		serve(ctx, addr, NewServer(store, config.Tuning, lg), lg)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func serve(ctx context.Context, addr string, s *Server, lg *log.Logger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Errorf("HTTP server shutdown: %v", err)
		}
	}()

	fmt.Printf("Serving guidance at http://%s/api/v1\n", addr)
	lg.Info("starting HTTP server", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal(lg, err)
	}
}

func loadAirport(ctx context.Context, store *Store, airport string, lg *log.Logger) []*nav.Approach {
	aps, e, err := store.LoadAirport(ctx, airport)
	if err != nil {
		fatal(lg, err)
	}
	if e.HaveErrors() {
		e.PrintErrors(os.Stderr, lg)
	}
	return aps
}

func requireAirport(lg *log.Logger) string {
	if *airport == "" {
		fatal(lg, errors.New("-airport must be given"))
	}
	return *airport
}

func fatal(lg *log.Logger, err error) {
	lg.Error("fatal", "error", err)
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/restfulbooker/booker-contract-tests/bookertests"
	"github.com/restfulbooker/booker-contract-tests/client"
	"github.com/restfulbooker/booker-contract-tests/config"
	"github.com/restfulbooker/booker-contract-tests/framework"
	"github.com/restfulbooker/booker-contract-tests/logging"
	"github.com/restfulbooker/booker-contract-tests/payload"
	"github.com/restfulbooker/booker-contract-tests/scenario"
	"github.com/restfulbooker/booker-contract-tests/servicedef"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	os.Exit(run(params))
}

func run(params commandParams) int {
	logger, err := logging.New(params.debugAll)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %s\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(params.configPath, params.envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		return 1
	}
	params.applyTo(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		return 1
	}

	entries := bookertests.AllScenarios()
	if cfg.ScenarioDir != "" {
		loaded, err := scenario.LoadDir(cfg.ScenarioDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid scenarios: %s\n", err)
			return 1
		}
		logger.Info("loaded scenario files", zap.String("dir", cfg.ScenarioDir), zap.Int("count", len(loaded)))
		entries = append(entries, bookertests.FileEntries(loaded)...)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = logging.NewPrintfLogger(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	apiClient := client.New(cfg.BaseURL, cfg.Timeout, nil)
	harness, err := framework.NewTestHarness(
		ctx,
		apiClient.BaseURL(),
		apiClient.BaseURL()+servicedef.PingPath,
		apiClient.StatusProbe(servicedef.PingPath),
		cfg.StatusQueryTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Booking service error: %s\n", err)
		return 1
	}
	logger.Debug("service is up", zap.String("url", harness.ServiceBaseURL()),
		zap.Duration("latency", harness.ServiceInfo().Latency))

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	if cfg.Seed != 0 {
		fmt.Printf("Using seed %d for generated values\n", cfg.Seed)
	}
	fmt.Println("Running test suite")

	auth := client.NewAuthProvider(apiClient, cfg.Credentials())
	runner := scenario.NewRunner(apiClient, auth, payload.NewBuilder(payload.NewFakeGenerator(cfg.Seed)))

	testLogger := &ConsoleTestLogger{
		Out:                  os.Stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := bookertests.RunTestSuite(ctx, bookertests.SuiteParams{
		Runner:     runner,
		Entries:    entries,
		Parallel:   cfg.Parallel,
		Filter:     params.filters.AsFilter,
		TestLogger: testLogger,
	})

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		var ids []framework.TestID
		for _, f := range results.Failures {
			ids = append(ids, f.TestID)
		}
		fmt.Println()
		fmt.Println("To run only the failed tests again:")
		fmt.Printf("  %s\n", params.rerunCommand(ids))
		return 1
	}
	return 0
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/framework"
	"github.com/journeyqa/journey-contract-tests/journeystub"
	"github.com/journeyqa/journey-contract-tests/journeytests"
	"github.com/journeyqa/journey-contract-tests/scenario"
	"github.com/journeyqa/journey-contract-tests/servicedef"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "journey-contract-tests",
		Short:         "Boundary and contract tests for a Journey API deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "YAML config file")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")

	root.AddCommand(newRunCommand(), newCasesCommand(), newStubCommand())
	return root
}

func newRunCommand() *cobra.Command {
	var filters framework.RegexFilters
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test suite against a Journey API",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := readParams(cmd, filters)
			if err != nil {
				return err
			}
			return runSuite(params, cmd.OutOrStdout())
		},
	}
	addRunFlags(cmd.Flags(), &filters)
	addTargetFlags(cmd.Flags())
	return cmd
}

func runSuite(params commandParams, out io.Writer) error {
	if params.serviceURL == "" {
		return errors.New("--url is required")
	}
	entity, err := params.entityContract()
	if err != nil {
		return err
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(out, "", log.LstdFlags)
	}

	harness, err := framework.NewTestHarness(
		framework.TargetConfig{
			BaseURL:            params.serviceURL,
			Timeout:            params.timeout,
			RequestsPerSecond:  params.rate,
			StatusQueryTimeout: params.statusQueryTimeout,
			ProbePath:          servicedef.JourneysPath + "/" + strings.Repeat("0", servicedef.JourneyIDLength),
		},
		mainDebugLogger,
		out,
	)
	if err != nil {
		return fmt.Errorf("target error: %w", err)
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters)

	fmt.Fprintln(out, "Running test suite")

	testLogger := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	report := &scenario.Report{}
	results, err := journeytests.RunTestSuite(harness, journeytests.Config{
		Contract:       entity,
		CreatedStatus:  params.createdStatus,
		NotFoundStatus: params.notFoundStatus,
		IDField:        params.idField,
		Report:         report,
	}, params.filters.AsFilter, testLogger)
	if err != nil {
		return err
	}

	if params.report {
		fmt.Fprintln(out)
		report.Write(out)
	}
	fmt.Fprintln(out)
	framework.PrintResults(out, results)
	if !results.OK() {
		return errTestsFailed
	}
	return nil
}

func newCasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List the boundary cases generated from the contract, without contacting any service",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := readParams(cmd, framework.RegexFilters{})
			if err != nil {
				return err
			}
			entity, err := params.entityContract()
			if err != nil {
				return err
			}
			printCases(cmd.OutOrStdout(), entity, contract.Generator{})
			return nil
		},
	}
	addTargetFlags(cmd.Flags())
	return cmd
}

func printCases(out io.Writer, entity *contract.EntityContract, gen contract.Generator) {
	count := 0
	for _, f := range entity.Fields() {
		fmt.Fprintf(out, "%s (%s)\n", f.Path, f.Kind)
		for c := range gen.Cases(f) {
			value := c.Value.JSONString()
			if c.Missing {
				value = "<missing>"
			}
			fmt.Fprintf(out, "  %-6s %-40s %s\n", c.Expect, c.Label, value)
			count++
		}
	}
	fmt.Fprintf(out, "%d cases for %d fields of %q\n", count, len(entity.Fields()), entity.Name)
}

func newStubCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve a local Journey API that implements the contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := readParams(cmd, framework.RegexFilters{})
			if err != nil {
				return err
			}
			entity, err := params.entityContract()
			if err != nil {
				return err
			}
			return serveStub(params, entity)
		},
	}
	addStubFlags(cmd.Flags())
	addTargetFlags(cmd.Flags())
	return cmd
}

func serveStub(params commandParams, entity *contract.EntityContract) error {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	router := journeystub.NewRouter(journeystub.Config{
		BasePath:       params.basePath,
		NotFoundStatus: params.notFoundStatus,
		CreatedStatus:  params.createdStatus,
		IDField:        params.idField,
		Contract:       entity,
		Logger:         framework.PrefixedLogger(logger, "[stub] "),
	})
	server := &http.Server{
		Addr:         params.listen,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Journey stub listening on http://%s%s", params.listen, params.basePath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Println("Shutting down stub...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/journeyqa/journey-contract-tests/contract"
	"github.com/journeyqa/journey-contract-tests/framework"
	"github.com/journeyqa/journey-contract-tests/servicedef"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix                 = "JOURNEYTEST"
	defaultTimeout            = time.Second * 10
	defaultStatusQueryTimeout = time.Second * 10
	defaultListenAddress      = "localhost:3000"
	defaultStubBasePath       = "/api"
)

var errTestsFailed = errors.New("some tests failed")

// commandParams is the resolved configuration of one command invocation. Values come from
// flags first, then JOURNEYTEST_* environment variables, then the config file.
type commandParams struct {
	serviceURL         string
	timeout            time.Duration
	rate               float64
	notFoundStatus     int
	createdStatus      int
	idField            string
	contractFile       string
	filters            framework.RegexFilters
	debug              bool
	debugAll           bool
	statusQueryTimeout time.Duration
	report             bool
	listen             string
	basePath           string
}

func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}
	if v.GetBool("no-color") {
		color.NoColor = true
	}
	return v, nil
}

func addTargetFlags(fs *pflag.FlagSet) {
	fs.Int("not-found-status", 400, "status the target gives for a well-formed identifier that does not exist (400 or 404)")
	fs.Int("created-status", servicedef.DefaultCreatedCode, "status the target gives for a successful create")
	fs.String("id-field", servicedef.DefaultIDField, "response field holding the generated journey identifier")
	fs.String("contract", "", "YAML contract file to use instead of the built-in Journey contract")
}

func addRunFlags(fs *pflag.FlagSet, filters *framework.RegexFilters) {
	fs.String("url", "", "base URL of the Journey API, such as https://host/api")
	fs.Duration("timeout", defaultTimeout, "timeout for each request")
	fs.Float64("rate", 0, "maximum requests per second (0 means no limit)")
	fs.Duration("status-timeout", defaultStatusQueryTimeout, "how long to wait for the target to answer before starting (0 to skip)")
	fs.Var(&filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.Bool("debug", false, "enable debug logging for failed tests")
	fs.Bool("debug-all", false, "enable debug logging for all tests")
	fs.Bool("report", false, "print every scenario with its outcome at the end of the run")
}

func addStubFlags(fs *pflag.FlagSet) {
	fs.String("listen", defaultListenAddress, "address for the stub service to listen on")
	fs.String("base-path", defaultStubBasePath, "path prefix of the stub's routes")
}

// readParams resolves everything the command's flags declare. Flags that a command doesn't
// have are left at their zero values.
func readParams(cmd *cobra.Command, filters framework.RegexFilters) (commandParams, error) {
	v, err := newViper(cmd)
	if err != nil {
		return commandParams{}, err
	}
	p := commandParams{
		serviceURL:         v.GetString("url"),
		timeout:            v.GetDuration("timeout"),
		rate:               v.GetFloat64("rate"),
		notFoundStatus:     v.GetInt("not-found-status"),
		createdStatus:      v.GetInt("created-status"),
		idField:            v.GetString("id-field"),
		contractFile:       v.GetString("contract"),
		filters:            filters,
		debug:              v.GetBool("debug"),
		debugAll:           v.GetBool("debug-all"),
		statusQueryTimeout: v.GetDuration("status-timeout"),
		report:             v.GetBool("report"),
		listen:             v.GetString("listen"),
		basePath:           v.GetString("base-path"),
	}
	// Patterns from the environment or config file apply only if none were given as flags.
	if cmd.Flags().Lookup("run") != nil {
		if err := addPatterns(cmd, v, "run", &p.filters.MustMatch); err != nil {
			return p, err
		}
		if err := addPatterns(cmd, v, "skip", &p.filters.MustNotMatch); err != nil {
			return p, err
		}
	}

	if p.notFoundStatus != 400 && p.notFoundStatus != 404 {
		return p, fmt.Errorf("--not-found-status must be 400 or 404, not %d", p.notFoundStatus)
	}
	if p.createdStatus < 200 || p.createdStatus > 299 {
		return p, fmt.Errorf("--created-status must be a 2xx status, not %d", p.createdStatus)
	}
	return p, nil
}

func addPatterns(cmd *cobra.Command, v *viper.Viper, name string, list *framework.RegexList) error {
	if cmd.Flags().Changed(name) {
		return nil
	}
	for _, pattern := range v.GetStringSlice(name) {
		if err := list.Set(pattern); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}
	return nil
}

// entityContract loads the contract file if there is one, or else returns the built-in
// Journey contract.
func (p commandParams) entityContract() (*contract.EntityContract, error) {
	if p.contractFile == "" {
		return contract.Journey(), nil
	}
	return contract.Load(p.contractFile)
}

package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

const statusQueryInterval = time.Millisecond * 100

// TargetConfig describes the service under test. It is passed in explicitly so that several
// harnesses can point at different environments in the same process.
type TargetConfig struct {
	BaseURL            string
	Timeout            time.Duration
	RequestsPerSecond  float64
	StatusQueryTimeout time.Duration // zero means don't probe the target before starting
	ProbePath          string
}

type TestHarness struct {
	config      TargetConfig
	dispatcher  *Dispatcher
	probeStatus int
	logger      Logger
}

// NewTestHarness creates a TestHarness and, if config.StatusQueryTimeout is set, verifies that
// the target is answering HTTP requests at all. Any HTTP status counts as an answer; only a
// transport failure lasting past the timeout is an error.
func NewTestHarness(
	config TargetConfig,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	dispatcher, err := NewDispatcher(DispatcherConfig{
		BaseURL:           config.BaseURL,
		Timeout:           config.Timeout,
		RequestsPerSecond: config.RequestsPerSecond,
	}, debugLogger)
	if err != nil {
		return nil, err
	}
	h := &TestHarness{
		config:     config,
		dispatcher: dispatcher,
		logger:     debugLogger,
	}
	if config.StatusQueryTimeout > 0 {
		status, err := queryTarget(dispatcher, config.ProbePath, config.StatusQueryTimeout, startupOutput)
		if err != nil {
			return nil, err
		}
		h.probeStatus = status
	}
	return h, nil
}

func (h *TestHarness) BaseURL() string {
	return h.dispatcher.BaseURL()
}

func (h *TestHarness) Dispatcher() *Dispatcher {
	return h.dispatcher
}

// ProbeStatus is the HTTP status the target gave to the startup probe, or zero if there was
// no probe.
func (h *TestHarness) ProbeStatus() int {
	return h.probeStatus
}

func queryTarget(d *Dispatcher, probePath string, timeout time.Duration, output io.Writer) (int, error) {
	if output == nil {
		output = io.Discard
	}
	if probePath == "" {
		probePath = "/"
	}
	fmt.Fprintf(output, "Connecting to target at %s", d.BaseURL())

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := d.Dispatch(context.Background(), RequestSpec{Method: "GET", Path: probePath})
		if err == nil {
			fmt.Fprintln(output)
			fmt.Fprintf(output, "Target answered the probe request with status %d\n", resp.Status)
			return resp.Status, nil
		}
		var ne *NetworkError
		if !errors.As(err, &ne) {
			fmt.Fprintln(output)
			return 0, err
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return 0, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(statusQueryInterval)
	}
}

package framework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const requestIDHeader = "X-Request-Id"

var pathParamPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// RequestSpec describes one request to the target. Path is relative to the target's base URL
// and may contain {name} placeholders, which are replaced with the path-escaped values from
// Params.
type RequestSpec struct {
	Method string
	Path   string
	Params map[string]string
	Body   []byte // JSON; nil means the request has no body
}

// ResolvePath substitutes the path parameters. It fails if any placeholder has no value.
func (r RequestSpec) ResolvePath() (string, error) {
	var missing []string
	path := pathParamPattern.ReplaceAllStringFunc(r.Path, func(m string) string {
		name := m[1 : len(m)-1]
		value, ok := r.Params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(value)
	})
	if len(missing) != 0 {
		return "", fmt.Errorf("no value for path parameter(s) %s in %q", strings.Join(missing, ", "), r.Path)
	}
	return path, nil
}

// JSONBody converts a JSON value into a request body.
func JSONBody(v ldvalue.Value) []byte {
	return []byte(v.JSONString())
}

// ResponseDescriptor is the normalized form of whatever the target sent back.
type ResponseDescriptor struct {
	Status    int
	Headers   http.Header
	RawBody   []byte
	Body      ldvalue.Value
	Parsed    bool // false if the body was empty or was not valid JSON
	RequestID string
	Elapsed   time.Duration
}

// NetworkError means the HTTP exchange itself could not be completed: DNS failure, refused
// connection, timeout, or a broken connection while reading the response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Timeout() bool {
	var ne net.Error
	return errors.Is(e.Err, context.DeadlineExceeded) || (errors.As(e.Err, &ne) && ne.Timeout())
}

// DispatcherConfig holds the transport settings for a Dispatcher.
type DispatcherConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // zero or less means no limit
	Transport         http.RoundTripper
}

// Dispatcher sends requests to the target. It makes exactly one attempt per call and never
// follows redirects, so that every response the target produces is visible to the test.
type Dispatcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  Logger
}

func NewDispatcher(config DispatcherConfig, logger Logger) (*Dispatcher, error) {
	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid target URL %q", config.BaseURL)
	}
	if logger == nil {
		logger = NullLogger()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return &Dispatcher{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: limiter,
		logger:  logger,
	}, nil
}

func (d *Dispatcher) BaseURL() string {
	return d.baseURL
}

// WithLogger returns a copy of the Dispatcher that sends its debug output to a different
// logger, typically the capturing logger of the current test. The copy shares the transport
// and the rate limiter.
func (d *Dispatcher) WithLogger(logger Logger) *Dispatcher {
	if logger == nil {
		logger = NullLogger()
	}
	d1 := *d
	d1.logger = logger
	return &d1
}

// Dispatch performs one request. HTTP error statuses are returned as normal responses; the
// only error results are a malformed RequestSpec or a *NetworkError.
func (d *Dispatcher) Dispatch(ctx context.Context, spec RequestSpec) (ResponseDescriptor, error) {
	path, err := spec.ResolvePath()
	if err != nil {
		return ResponseDescriptor{}, err
	}
	target := d.baseURL + path

	var body io.Reader
	if spec.Body != nil {
		body = bytes.NewReader(spec.Body)
	}
	req, err := http.NewRequestWithContext(ctx, spec.Method, target, body)
	if err != nil {
		return ResponseDescriptor{}, err
	}
	if spec.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	if err := d.limiter.Wait(ctx); err != nil {
		return ResponseDescriptor{}, &NetworkError{Method: spec.Method, URL: target, Err: err}
	}

	log := RequestLogger(d.logger, requestID)
	if spec.Body != nil {
		log.Printf("%s %s %s", spec.Method, target, string(spec.Body))
	} else {
		log.Printf("%s %s", spec.Method, target)
	}
	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("Request failed: %s", err)
		return ResponseDescriptor{}, &NetworkError{Method: spec.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Reading response body failed: %s", err)
		return ResponseDescriptor{}, &NetworkError{Method: spec.Method, URL: target, Err: err}
	}

	rd := ResponseDescriptor{
		Status:    resp.StatusCode,
		Headers:   resp.Header,
		RawBody:   data,
		RequestID: requestID,
		Elapsed:   time.Since(start),
	}
	if len(bytes.TrimSpace(data)) != 0 {
		var v ldvalue.Value
		if json.Unmarshal(data, &v) == nil {
			rd.Body = v
			rd.Parsed = true
		}
	}
	log.Printf("Response %d after %s: %s", rd.Status, rd.Elapsed.Round(time.Millisecond), string(data))
	return rd, nil
}

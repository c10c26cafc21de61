package framework

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestResolvePath(t *testing.T) {
	p, err := RequestSpec{Path: "/journeys/{id}", Params: map[string]string{"id": "abc/def"}}.ResolvePath()
	require.NoError(t, err)
	assert.Equal(t, "/journeys/abc%2Fdef", p)

	_, err = RequestSpec{Path: "/journeys/{id}"}.ResolvePath()
	assert.Error(t, err)
}

func TestDispatchSendsRequestAndParsesBody(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{"_id": "68adb597f16d278b7f75d188"}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var log CapturingLogger
		d, err := NewDispatcher(DispatcherConfig{BaseURL: server.URL + "/api/"}, &log)
		require.NoError(t, err)

		body := JSONBody(ldvalue.ObjectBuild().Set("name", ldvalue.String("John")).Build())
		resp, err := d.Dispatch(context.Background(), RequestSpec{Method: "POST", Path: "/journeys", Body: body})
		require.NoError(t, err)

		assert.Equal(t, 200, resp.Status)
		assert.True(t, resp.Parsed)
		assert.Equal(t, ldvalue.String("68adb597f16d278b7f75d188"), resp.Body.GetByKey("_id"))
		assert.NotEmpty(t, resp.RequestID)

		r := <-requestsCh
		assert.Equal(t, "/api/journeys", r.Request.URL.Path)
		assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
		assert.Equal(t, resp.RequestID, r.Request.Header.Get("X-Request-Id"))
		assert.Equal(t, `{"name":"John"}`, string(r.Body))
		output := log.Output()
		assert.Len(t, output, 2)
		assert.Equal(t, output, output.ForRequest(resp.RequestID))
	})
}

func TestDispatchReturnsErrorStatusesAsData(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(400, nil, []byte("Bad Request"))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		d, err := NewDispatcher(DispatcherConfig{BaseURL: server.URL}, nil)
		require.NoError(t, err)
		resp, err := d.Dispatch(context.Background(), RequestSpec{Method: "GET", Path: "/journeys/1"})
		require.NoError(t, err)
		assert.Equal(t, 400, resp.Status)
		assert.False(t, resp.Parsed)
		assert.Equal(t, "Bad Request", string(resp.RawBody))
	})
}

func TestDispatchDoesNotFollowRedirects(t *testing.T) {
	headers := make(http.Header)
	headers.Set("Location", "/elsewhere")
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithResponse(302, headers, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		d, err := NewDispatcher(DispatcherConfig{BaseURL: server.URL}, nil)
		require.NoError(t, err)
		resp, err := d.Dispatch(context.Background(), RequestSpec{Method: "GET", Path: "/journeys/1"})
		require.NoError(t, err)
		assert.Equal(t, 302, resp.Status)
		assert.Len(t, requestsCh, 1)
	})
}

func TestDispatchTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		defer close(release)
		d, err := NewDispatcher(DispatcherConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, nil)
		require.NoError(t, err)
		_, err = d.Dispatch(context.Background(), RequestSpec{Method: "GET", Path: "/journeys"})
		var ne *NetworkError
		require.True(t, errors.As(err, &ne))
		assert.True(t, ne.Timeout())
	})
}

func TestDispatchConnectionRefusedIsNetworkError(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	d, err := NewDispatcher(DispatcherConfig{BaseURL: url}, nil)
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), RequestSpec{Method: "GET", Path: "/journeys"})
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, url+"/journeys", ne.URL)
}

func TestNewDispatcherRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "://x"} {
		_, err := NewDispatcher(DispatcherConfig{BaseURL: u}, nil)
		assert.Error(t, err, u)
	}
}

func TestDispatchRateLimit(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(200), func(server *httptest.Server) {
		d, err := NewDispatcher(DispatcherConfig{BaseURL: server.URL, RequestsPerSecond: 20}, nil)
		require.NoError(t, err)
		start := time.Now()
		for i := 0; i < 3; i++ {
			_, err := d.Dispatch(context.Background(), RequestSpec{Method: "GET", Path: "/"})
			require.NoError(t, err)
		}
		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	})
}

func TestCurlCommand(t *testing.T) {
	spec := RequestSpec{
		Method: "PATCH",
		Path:   "/journeys",
		Body:   []byte(`{"journey_id":"x","passenger":{"name":"O'Brien"}}`),
	}
	assert.Equal(t,
		`curl -i -X PATCH -H 'Content-Type: application/json' --data '{"journey_id":"x","passenger":{"name":"O'"'"'Brien"}}' http://localhost:3000/api/journeys`,
		CurlCommand("http://localhost:3000/api/", spec))
}

func TestHarnessProbe(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(400))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h, err := NewTestHarness(TargetConfig{
			BaseURL:            server.URL,
			StatusQueryTimeout: time.Second,
			ProbePath:          "/journeys/000000000000000000000000",
		}, nil, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, 400, h.ProbeStatus())
		assert.Equal(t, server.URL, h.BaseURL())
		r := <-requestsCh
		assert.Equal(t, "/journeys/000000000000000000000000", r.Request.URL.Path)
	})
}

func TestHarnessProbeTimesOut(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	_, err := NewTestHarness(TargetConfig{BaseURL: url, StatusQueryTimeout: 250 * time.Millisecond}, nil, nil)
	require.Error(t, err)
	var ne *NetworkError
	assert.True(t, errors.As(err, &ne))
}

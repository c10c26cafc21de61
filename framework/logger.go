package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Only this many characters of a request id are shown when debug output is dumped; that is
// enough to match a line against the target's own logs.
const shortRequestIDLength = 8

type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

// PrefixedLogger returns a Logger that adds a fixed prefix to every message it passes on.
func PrefixedLogger(target Logger, prefix string) Logger {
	if target == nil {
		return NullLogger()
	}
	return prefixedLogger{target: target, prefix: prefix}
}

type prefixedLogger struct {
	target Logger
	prefix string
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.target.Printf(p.prefix+message, args...)
}

// RequestLogger returns a Logger for the lines that belong to one dispatched request. A
// CapturingLogger stores the request id with each message; other loggers get it as a prefix.
func RequestLogger(target Logger, requestID string) Logger {
	if target == nil {
		return NullLogger()
	}
	if c, ok := target.(*CapturingLogger); ok {
		return requestLogger{capture: c, requestID: requestID}
	}
	return PrefixedLogger(target, "["+requestID+"] ")
}

type requestLogger struct {
	capture   *CapturingLogger
	requestID string
}

func (r requestLogger) Printf(message string, args ...interface{}) {
	r.capture.add(r.requestID, fmt.Sprintf(message, args...))
}

// CapturedMessage is one line of a test's debug output. RequestID is set if the line was
// written while dispatching a request to the target.
type CapturedMessage struct {
	Time      time.Time
	RequestID string
	Message   string
}

type CapturedOutput []CapturedMessage

// ForRequest returns only the lines that were written for the given request.
func (output CapturedOutput) ForRequest(requestID string) CapturedOutput {
	var ret CapturedOutput
	for _, m := range output {
		if m.RequestID == requestID {
			ret = append(ret, m)
		}
	}
	return ret
}

// CapturingLogger accumulates debug output for a single test, so that it is shown only if
// the test fails or the user asked for everything.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.add("", fmt.Sprintf(message, args...))
}

func (l *CapturingLogger) add(requestID, message string) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), RequestID: requestID, Message: message})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

// Dump writes one line per message. Lines that belong to a request carry the start of its id.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		tag := ""
		if m.RequestID != "" {
			id := m.RequestID
			if len(id) > shortRequestIDLength {
				id = id[:shortRequestIDLength]
			}
			tag = "[" + id + "] "
		}
		fmt.Fprintf(dest, "%s[%s] %s%s\n",
			prefix,
			m.Time.Format(timestampFormat),
			tag,
			m.Message,
		)
	}
}

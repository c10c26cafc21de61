package framework

// TestLogger receives progress notifications as the suite runs. The console implementation
// lives in the main package.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, kind FailureKind, err error)
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, FailureKind, error)      {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}

// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of API contract tests.
//
// The general model is:
//
// 1. The test harness talks to a remote target service over HTTP. Every request goes through
// a Dispatcher, which never treats an HTTP error status as a failure: a 400 is just data, and
// it is up to the test to decide whether it was the expected answer.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. Failures are classified as either assertion failures (the target
// answered, but wrongly) or infrastructure failures (we could not talk to the target).
//
// The domain-specific code that knows what is being tested is responsible for building the
// requests, deciding what the target should answer, and providing a domain-specific test API
// on top of the test context.
package framework

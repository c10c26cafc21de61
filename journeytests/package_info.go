// Package journeytests contains the Journey API contract tests themselves and their supporting API.
//
// Test harness infrastructure that is not specific to the Journey domain, such as sending
// requests to the target and tracking test results, is in the lower-level framework package.
// The boundary matrices are generated from the contract package and executed through the
// scenario package.
package journeytests

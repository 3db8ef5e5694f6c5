// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of contract tests.
//
// The general model is:
//
// 1. The test harness talks to a remote service under test. Before any tests run, it probes a
// status resource on that service until it answers, so that a service that is down produces one
// clear startup error rather than a failure in every test.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results and debug output.
//
// 3. Tests can be selected or excluded with regex filters on their identifiers.
//
// The domain-specific code that knows what is being tested is responsible for making the
// requests, checking the responses, and reporting failures through the test context.
package framework

// Package bookertests contains the restful-booker contract tests themselves: the table of
// scenarios, and the code that runs them and reports each one as a test.
//
// The mechanics of sending requests and checking responses are in the lower-level client,
// scenario, and expect packages; test identifiers, filtering, and result reporting are in the
// framework package.
package bookertests

// Package testutil provides shared helpers for busy's tests.
//
// Key components:
//   - TestEnvironment: isolates the XDG config and state homes in temp dirs
//   - SyncBuffer: an io.Writer that is safe to share between goroutines
//   - EventRecorder: collects wait.Registry events for assertions
//
// Usage guidelines:
//   - Every test touching config or logging should start with NewTestEnvironment
//   - Each test should be completely isolated with no shared state
package testutil

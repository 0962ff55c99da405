// Package errhandler forwards application errors, panics and shutdown-time
// fatal errors to an error-tracking hub such as Sentry.
//
// Every report gets a scope of its own: the scope is cleared, tagged with the
// caller's error ID, given an "error" context (optionally with a deep link
// into an error viewer), filled with the user, tags, contexts and extras of a
// ContextProvider, and then the error is captured.
//
// # Core Components
//
//   - Reporter: HandleError, HandleException and HandleShutdown entry points
//   - Sanitizer: turns arbitrary nested values into serializable data with a
//     class deny list and a nesting cutoff
//   - Hub, Scope, HubAccessor: the contract with the reporting client
//     (see hubs/sentryhub, hubs/logging, hubs/multi, hubs/noop)
//   - ContextProvider: where contextual data comes from (Store, EmptyContext)
//
// # Quick Start
//
//	if err := sentryhub.Init(sentryhub.Config{DSN: dsn}); err != nil {
//	    return err
//	}
//	defer sentryhub.Flush(2 * time.Second)
//
//	store := errhandler.NewStore()
//	reporter := errhandler.NewReporter(
//	    errhandler.WithHubAccessor(sentryhub.CurrentHub()),
//	    errhandler.WithContextProvider(store),
//	    errhandler.WithSanitizer(errhandler.NewSanitizer("github.com/acme/app/auth.Credentials")),
//	    errhandler.WithErrorViewerBaseURL("https://logs.example.com/errors/"),
//	)
//
//	if err := doWork(); err != nil {
//	    _ = reporter.HandleException(err, errhandler.NewErrorID())
//	}
//
// # Design Principles
//
//   - Hub failures are returned to the caller, never swallowed
//   - The sanitizer never fails: unknown values are stringified, deep values truncated
//   - No backend SDK in the core: Sentry and friends live in the hubs packages
package errhandler

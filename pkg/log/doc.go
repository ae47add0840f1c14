// Package log provides the logging abstraction used across expbatch.
//
// Components depend on the Logger interface only. A zerolog-backed
// implementation is provided for the CLI and a no-op implementation for
// tests and library callers that want silence:
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	logger.Info("batch finished", log.Int("exit_code", 0))
//
// Log output must never be written to stdout: the external program's stdout
// is the log artifact, and the runner may tee it to the terminal.
package log

// Package logger provides the structured logging interface used across the
// dashboard.
//
// It wraps zerolog behind a small Logger interface. There is no global
// instance: the CLI builds one logger at startup from config.LoggingConfig
// and passes it to every component that needs it.
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//
//	logger.Action(log, "CHECK_AWS_ACCOUNT", logger.StatusOK, "", map[string]interface{}{
//	    "your_account_id":     "123456789012",
//	    "required_account_id": "123456789012",
//	})
//
// Output rules:
//   - no file configured: colored console output on stdout
//   - file configured: JSON lines appended to the file
//   - file and Console set: JSON to the file, console output on stderr
//
// NewNopLogger discards everything. NewTestLogger captures records for
// assertions in tests.
package logger

// Package logging builds the structured slog loggers used across the toolkit.
//
//	logger, err := logging.New(logging.Config{Level: "debug", Format: "json"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// Loggers created here add the request ID carried by a context
// (WithRequestID) to every record logged with that context, and when Redact
// is set they mask credentials in attributes such as "authorization".
package logging

// Package logger provides structured logging for the market components.
//
// Every component receives a Logger and defaults to NoOpLogger when none is
// configured. SimpleLogger writes one line per entry:
//
//	2026-01-02T15:04:05Z [INFO] [mymarket] catalog loaded customers=3 products=42
//
// or, with the json format:
//
//	{"customers":3,"level":"INFO","message":"catalog loaded","products":42,"service":"mymarket","timestamp":"..."}
//
// Child loggers created with With carry their fields into every entry:
//
//	log := logger.NewSimpleLogger(logger.WithFormat("json"))
//	persistLog := log.With(map[string]interface{}{"correlation_id": id})
//	persistLog.Info("products written", map[string]interface{}{"count": 42})
//
// Configuration through the environment:
//   - MYMARKET_LOG_LEVEL: debug, info, warn, error
//   - MYMARKET_LOG_FORMAT: text, json
//
// Passwords and other credentials must never be passed as fields.
package logger

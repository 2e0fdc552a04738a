// Package ctxhelper provides helper functions for working with the context
package ctxhelper

import (
	"github.com/jvarghese/gigwish/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var (
	// KeySession is the context key for storing the admin session associated with the current call
	KeySession = ctxKey("session")
	// KeyFingerprint is the context key for storing the calling device's fingerprint ID
	KeyFingerprint = ctxKey("fingerprint")
	// KeyLogger is the context key for storing the logger in the context
	KeyLogger = ctxKey("logger")
)

// internal context key
type ctxKey string

// Session returns the admin session from the current context, if available
func Session(ctx context.Context) *models.Session {
	if sess, ok := ctx.Value(KeySession).(models.Session); ok {
		return &sess
	}
	return nil
}

// Fingerprint returns the calling device's fingerprint ID from the current context.
// An empty string means the transport could not derive one.
func Fingerprint(ctx context.Context) string {
	if fp, ok := ctx.Value(KeyFingerprint).(string); ok {
		return fp
	}
	return ""
}

// Logger returns the logger from the current context. If no logger is available, it panics
func Logger(ctx context.Context) *logrus.Entry {
	logger, ok := ctx.Value(KeyLogger).(*logrus.Entry)
	if ok {
		return logger
	}
	panic("No logger in context")
}

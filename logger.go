package mpv

import (
	"sync"

	"go.uber.org/zap"
)

var (
	pkgLogger   *zap.Logger
	pkgLoggerMu sync.Mutex
)

// Logger returns the package's default logger, used by clients created
// without WithLogger. It is a no-op logger unless SetLogger was called.
func Logger() *zap.Logger {
	pkgLoggerMu.Lock()
	defer pkgLoggerMu.Unlock()
	if pkgLogger == nil {
		pkgLogger = zap.NewNop()
	}
	return pkgLogger
}

// SetLogger replaces the package's default logger.
func SetLogger(l *zap.Logger) {
	pkgLoggerMu.Lock()
	pkgLogger = l
	pkgLoggerMu.Unlock()
}

package env

import (
	"log"
	"os"
	"strings"
	"sync"
)

var (
	warnLogger func(format string, args ...any) = log.Printf
	warnMu     sync.Mutex
	warnedKeys sync.Map
)

// Lookup returns the trimmed value of key if it is set to a non-blank value. Otherwise
// each legacy name is tried in order; the first one found is returned and a
// deprecation warning naming key is logged once per legacy name.
func Lookup(key string, legacy ...string) (string, bool) {
	if v, ok := lookupTrimmed(key); ok {
		return v, true
	}
	for _, old := range legacy {
		if v, ok := lookupTrimmed(old); ok {
			logDeprecated(old, key)
			return v, true
		}
	}
	return "", false
}

func lookupTrimmed(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

func logDeprecated(oldKey, newKey string) {
	onceIface, _ := warnedKeys.LoadOrStore(oldKey, &sync.Once{})
	once := onceIface.(*sync.Once)
	once.Do(func() {
		warnMu.Lock()
		logger := warnLogger
		warnMu.Unlock()
		logger("%s is deprecated; use %s", oldKey, newKey)
	})
}

// ResetWarningsForTesting clears the cached once guards so tests can verify
// warning behaviour deterministically.
func ResetWarningsForTesting() {
	warnMu.Lock()
	warnedKeys = sync.Map{}
	warnMu.Unlock()
}

// SetWarnLoggerForTesting swaps the logger used for warnings. The returned
// function restores the previous logger and should be deferred in tests.
func SetWarnLoggerForTesting(fn func(format string, args ...any)) (restore func()) {
	warnMu.Lock()
	previous := warnLogger
	warnLogger = fn
	warnMu.Unlock()
	return func() {
		warnMu.Lock()
		warnLogger = previous
		warnMu.Unlock()
	}
}

// Package testing switches the application into test mode when imported by a
// test binary.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("TRAINHUB_TEST_MODE", "1")
		if os.Getenv("JWT_SIGNING_KEY") == "" {
			_ = os.Setenv("JWT_SIGNING_KEY", "test-signing-key")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}

package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CIVREG_TEST_MODE") == "" {
			_ = os.Setenv("CIVREG_TEST_MODE", "1")
		}
	})
}

// README: Embedded bolt database used when no Postgres DSN is configured.
package infra

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

func OpenBolt(path string) (*bolt.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
}

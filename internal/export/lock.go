package export

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 250 * time.Millisecond

// lockDestination takes an advisory lock keyed by the output directory so
// two batches never write into the same place at once. The returned func
// releases it.
func lockDestination(ctx context.Context, lockDir, dest string) (func(), error) {
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	sum := sha1.Sum([]byte(filepath.Clean(dest)))
	lock := flock.New(filepath.Join(lockDir, hex.EncodeToString(sum[:])+".lock"))

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock output directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("lock output directory: not acquired")
	}

	return func() { _ = lock.Unlock() }, nil
}

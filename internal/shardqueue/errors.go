package shardqueue

import (
	"errors"
	"fmt"

	backoff "github.com/cenkalti/backoff/v4"
)

var (
	ErrExecutorClosed = errors.New("shardqueue: executor closed")
	ErrQueueFull      = errors.New("shardqueue: queue full")
	ErrJobPanicked    = errors.New("shardqueue: job panicked")
)

// QueueFullError reports the shard that rejected a submission.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("shardqueue: shard %d full (%d/%d)", e.Shard, e.Length, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }

// Permanent marks err as not worth retrying.
func Permanent(err error) error { return backoff.Permanent(err) }

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var pe *backoff.PermanentError
	return errors.As(err, &pe)
}

package syncer

import (
	"context"

	"github.com/sethvargo/go-retry"

	"github.com/quillnote/quill-sync/internal/adapter"
)

// retryNetwork runs op with exponential backoff, retrying only
// network-class failures. Rejections and validation errors surface
// immediately; a network error that survives every attempt is returned
// as-is.
func (m *SyncManager) retryNetwork(ctx context.Context, op func(ctx context.Context) error) error {
	b := retry.NewExponential(m.cfg.BackoffBase)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithCappedDuration(m.cfg.BackoffCap, b)
	b = retry.WithMaxRetries(uint64(m.cfg.MaxRetries), b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if adapter.IsNetwork(err) {
			m.logger.Debug().Err(err).Msg("transient network failure, will retry")
			return retry.RetryableError(err)
		}
		return err
	})
}

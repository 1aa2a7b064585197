package httputil

import (
	"io"

	"github.com/wareledger/wareledger/internal/errors"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 64 << 20

// ReadAllWithLimit reads r fully, failing with a 413 ServiceError once more
// than limit bytes arrive. A nil reader yields an empty body.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.PayloadTooLarge(limit)
	}
	return data, nil
}

// Drain discards what is left of r, up to limit bytes.
func Drain(r io.Reader, limit int64) {
	if r == nil {
		return
	}
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, limit))
}

package observability

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"time"
)

func (p *Prom) ObserveStore(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.StoreErrorsTotal.WithLabelValues(op, classifyStoreErr(err)).Inc()
	}
	p.StoreOpDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func (p *Prom) RecordRecovery(document string) {
	p.StoreRecoveries.WithLabelValues(document).Inc()
}

// RecordMutation counts a review mutation; result is "ok" or the error class.
func (p *Prom) RecordMutation(op, result string) {
	p.ReviewMutations.WithLabelValues(op, result).Inc()
}

func classifyStoreErr(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "not_exist"
	case errors.Is(err, fs.ErrPermission):
		return "permission"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return "decode"
	default:
		return "unknown"
	}
}

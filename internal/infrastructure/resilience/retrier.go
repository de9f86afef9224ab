package resilience

import (
	"context"
	"errors"
)

// Retrier narrows Executor to the search core's retry contract with a fixed
// classifier: context cancellation is terminal, any other repository-level
// error is worth another attempt.
type Retrier struct {
	executor *Executor
}

func NewRetrier(executor *Executor) *Retrier {
	return &Retrier{executor: executor}
}

func (r *Retrier) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	return r.executor.Execute(ctx, operation, fn, classifyRepositoryError)
}

func classifyRepositoryError(err error) ErrorClassification {
	if err == nil {
		return ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

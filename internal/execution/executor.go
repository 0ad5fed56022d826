package execution

import (
	"context"
)

// Executor runs one logical suite and returns its fresh result
type Executor interface {
	Execute(ctx context.Context) (*Result, error)
}

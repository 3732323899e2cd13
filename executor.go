package prodigyfix

import (
	"context"

	"github.com/felipe-ssantos/prodigyfix/internal/shardqueue"
)

// executor abstracts the internal async job runner used for best-effort
// remote side effects (view-count writes).
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Stop()
}

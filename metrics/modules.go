package metrics

import (
	"github.com/ipfs-force-community/metrics"
)

// MetricsCtx scopes the daemon's measurements; constructors take it
// instead of a bare context so the scope travels with the DI graph.
type MetricsCtx = metrics.MetricsCtx

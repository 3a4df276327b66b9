package utils

import (
	"os"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("shutdown")

// MonitorShutdown closes the returned channel on SIGTERM/SIGINT or when
// triggerCh fires, whichever comes first.
func MonitorShutdown(triggerCh <-chan struct{}) <-chan struct{} {
	sigCh := make(chan os.Signal, 2)
	out := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			log.Warnw("received shutdown", "signal", sig)
		case <-triggerCh:
			log.Warn("received shutdown")
		}

		// Sync all loggers.
		_ = log.Sync() //nolint:errcheck
		close(out)
	}()

	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	return out
}

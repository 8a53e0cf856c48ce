//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ltaportal/procurement/pkg/portal"
	"go.uber.org/zap"
)

// watchVisibility toggles visibility on SIGUSR1, standing in for a
// window being hidden and shown.
func watchVisibility(ctx context.Context, v *portal.Visibility, logger *zap.Logger) (stop func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sig:
				logger.Info("visibility changed", zap.Bool("visible", v.Toggle()))
			}
		}
	}()
	return func() {
		signal.Stop(sig)
		<-done
	}
}

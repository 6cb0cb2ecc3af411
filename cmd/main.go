package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/bootstrap"
)

func main() {
	c := bootstrap.NewContainer()
	c.MustInit()

	if err := c.Start(); err != nil {
		c.Log.Errorw("Failed to start", "error", err)
		c.Shutdown()
		os.Exit(1)
	}

	waitForShutdown(c)
}

// waitForShutdown blocks until a signal arrives or a component cancels the
// application context, then shuts everything down in order
func waitForShutdown(c *bootstrap.Container) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		c.Log.Infow("Shutdown signal received", "signal", sig.String())
	case <-c.Context.Done():
		c.Log.Warn("Application context cancelled")
	}

	c.Shutdown()
}

package shared

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// SetupSignalHandling cancels ctx on the first Interrupt/SIGTERM/SIGHUP/
// SIGQUIT, giving probes five seconds to unwind cleanly before forcing
// exit; a second signal exits immediately.
func SetupSignalHandling(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 2)

	sigs := []os.Signal{os.Interrupt}
	if runtime.GOOS != "windows" {
		sigs = append(sigs, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
		signal.Ignore(syscall.SIGPIPE)
	}

	signal.Notify(sigCh, sigs...)

	go func() {
		s := <-sigCh
		cancel()

		select {
		case <-sigCh:
			if ss, ok := s.(syscall.Signal); ok {
				os.Exit(128 + int(ss))
			}
			os.Exit(1)
		case <-time.After(5 * time.Second):
			os.Exit(0)
		}
	}()
}

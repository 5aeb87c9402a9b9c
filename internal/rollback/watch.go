package rollback

import (
	"os"
	"os/signal"
	"syscall"
)

// Watch installs the signal handler spec.md §5 and §7 describe:
// SIGHUP/SIGINT/SIGQUIT/SIGTERM set the CMD_QUIT bit and drain the
// registry. It returns a stop function that undoes signal.Notify,
// mirroring the teacher's defer cancel() pattern in cmd/lci main.go.
func (m *Manager) Watch() (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			m.quit.Store(true)
			m.CleanupOnSignal()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

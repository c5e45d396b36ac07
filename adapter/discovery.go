package adapter

import (
	"context"
	"time"
)

// maxRestartBackoff caps the capped-exponential backoff between
// best-effort re-discovery attempts once keep-alive notices the
// controller stopped scanning on its own.
const maxRestartBackoff = 30 * time.Second

// StartDiscovery begins scanning for addressTypes (an OR of
// mgmt.ScanTypeBREDR/LEPublic/LERandom). keepAlive requests the
// Adapter to transparently re-issue start-discovery whenever the
// controller reports discovering-changed(enabled=false) on its own,
// until StopDiscovery is called: spec §4.7 "Discovery keep-alive".
func (a *Adapter) StartDiscovery(ctx context.Context, addressTypes uint8, keepAlive bool) error {
	a.discoveryTypes.Store(uint32(addressTypes))
	a.keepAlive.Store(keepAlive)
	return a.mc.StartDiscovery(ctx, a.index, addressTypes)
}

// StopDiscovery halts scanning and disables any in-flight keep-alive
// re-discovery loop.
func (a *Adapter) StopDiscovery(ctx context.Context) error {
	a.keepAlive.Store(false)
	a.mu.Lock()
	cancel := a.discoveryCancel
	a.discoveryCancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return a.mc.StopDiscovery(ctx, a.index, uint8(a.discoveryTypes.Load()))
}

// restartDiscovery launches (or replaces) the background re-issue loop:
// best-effort, with a capped exponential backoff between attempts,
// stopping once StopDiscovery is called, the Adapter is closed, or the
// controller is no longer powered.
func (a *Adapter) restartDiscovery() {
	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	if prev := a.discoveryCancel; prev != nil {
		prev()
	}
	a.discoveryCancel = cancel
	a.mu.Unlock()

	go func() {
		backoff := 500 * time.Millisecond
		for {
			if a.settings.Load()&SettingPowered == 0 {
				return
			}
			err := a.mc.StartDiscovery(ctx, a.index, uint8(a.discoveryTypes.Load()))
			if err == nil {
				return
			}
			a.log.WithError(err).Warn("re-discovery attempt failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < maxRestartBackoff {
				backoff *= 2
				if backoff > maxRestartBackoff {
					backoff = maxRestartBackoff
				}
			}
		}
	}()
}

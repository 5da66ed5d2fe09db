package availability

import (
	"context"
	"os"
	"sync/atomic"
	"time"
)

// Provider hands out the current policy and allows hot swaps.
type Provider struct {
	p atomic.Pointer[Policy]
}

// NewProvider wraps an initial policy.
func NewProvider(p *Policy) *Provider {
	pr := &Provider{}
	pr.p.Store(p)
	return pr
}

// Current returns the active policy.
func (pr *Provider) Current() *Policy {
	return pr.p.Load()
}

// Set replaces the active policy.
func (pr *Provider) Set(p *Policy) {
	if p != nil {
		pr.p.Store(p)
	}
}

// Watch reloads the policy file on change and calls onUpdate with the
// latest parsed policy. It performs an initial load before entering the
// poll loop, so a broken file fails startup instead of being silently
// skipped.
func Watch(ctx context.Context, path string, interval time.Duration, onUpdate func(*Policy)) error {
	if path == "" {
		path = "configs/availability.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	p, err := Load(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(p)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				p, err := Load(path)
				if err != nil {
					continue
				}
				lastMod = info.ModTime()
				if onUpdate != nil {
					onUpdate(p)
				}
			}
		}
	}()

	return nil
}

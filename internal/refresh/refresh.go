// Package refresh keeps the response cache warm by re-fetching every
// configured asset on a fixed cadence, crypto more often than the rest.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"marketproxy/internal/market"
	"marketproxy/internal/proxy"
)

const (
	DefaultCryptoEvery  = 30 * time.Second
	DefaultGeneralEvery = 60 * time.Second
)

// Refresher periodically warms the cache through the orchestrator. Failures
// are logged and dropped; nothing is cached on error and the next tick tries
// again.
type Refresher struct {
	Orchestrator *proxy.Orchestrator
	Assets       []market.Asset
	CryptoEvery  time.Duration
	GeneralEvery time.Duration
	Range        market.TimeRange
	Log          logrus.FieldLogger

	cron *cron.Cron
}

// Start registers the two refresh loops and starts the scheduler.
func (r *Refresher) Start() error {
	if r.CryptoEvery <= 0 {
		r.CryptoEvery = DefaultCryptoEvery
	}
	if r.GeneralEvery <= 0 {
		r.GeneralEvery = DefaultGeneralEvery
	}
	if r.Range == "" {
		r.Range = market.Range1M
	}

	var crypto, general []market.Asset
	for _, a := range r.Assets {
		if a.Category == market.CategoryCrypto {
			crypto = append(crypto, a)
		} else {
			general = append(general, a)
		}
	}

	r.cron = cron.New()
	if len(crypto) > 0 {
		if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.CryptoEvery), func() { r.warm(crypto) }); err != nil {
			return fmt.Errorf("register crypto refresh: %w", err)
		}
	}
	if len(general) > 0 {
		if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.GeneralEvery), func() { r.warm(general) }); err != nil {
			return fmt.Errorf("register general refresh: %w", err)
		}
	}
	r.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for running jobs.
func (r *Refresher) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

func (r *Refresher) warm(assets []market.Asset) {
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	for _, res := range r.Orchestrator.FetchAll(ctx, assets, r.Range) {
		if res.Err != nil && r.Log != nil {
			r.Log.WithFields(logrus.Fields{"asset": res.Asset.ID}).WithError(res.Err).Warn("refresh failed")
		}
	}
}

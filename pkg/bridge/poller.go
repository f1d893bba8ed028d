package bridge

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"crm-softphone-connector/pkg/models"
)

// poller re-searches one pending call on a fixed interval with a bounded
// attempt budget. It stands in for the "record saved" event the CRM never
// sends: once a new record is indexed, a re-search finds it.
type poller struct {
	key         string
	call        models.Call
	interval    time.Duration
	maxAttempts int
	attempts    int
	timer       *clock.Timer
	stopped     bool
}

func (p *poller) stop() {
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
	}
}

// startRepollLocked begins a polling cycle for a call identity, replacing
// any cycle already running for it. At most one poller per identity.
// Requires b.mu.
func (b *Bridge) startRepollLocked(call models.Call, boosted bool) {
	key := call.Key()

	if prev, ok := b.pollers[key]; ok {
		prev.stop()
	}

	p := &poller{
		key:         key,
		call:        call,
		interval:    b.cfg.RepollInterval(),
		maxAttempts: b.cfg.RepollMaxAttempts,
	}
	if boosted {
		p.interval = b.cfg.BoostRepollInterval()
		p.maxAttempts = b.cfg.BoostRepollMaxAttempts
	}

	b.pollers[key] = p
	p.timer = b.clock.AfterFunc(p.interval, func() {
		b.pollTick(p)
	})

	b.logger.WithFields(logrus.Fields{
		"call_key":     key,
		"interval":     p.interval,
		"max_attempts": p.maxAttempts,
		"boosted":      boosted,
	}).Debug("Re-poll cycle started")
}

func (b *Bridge) pollTick(p *poller) {
	b.mu.Lock()
	if p.stopped {
		b.mu.Unlock()
		return
	}
	if b.entryLocked(p.key) == nil {
		p.stop()
		delete(b.pollers, p.key)
		b.mu.Unlock()
		return
	}
	p.attempts++
	call := p.call
	b.mu.Unlock()

	b.metrics.RepollAttemptsTotal.Inc()
	outcome, err := b.searchCall(call)
	if err != nil {
		b.logger.WithError(err).WithField("call_key", p.key).Warn("Re-poll search failed")
	}

	b.mu.Lock()
	if p.stopped {
		b.mu.Unlock()
		return
	}
	if b.entryLocked(p.key) == nil {
		p.stop()
		delete(b.pollers, p.key)
		b.mu.Unlock()
		return
	}

	switch {
	case err == nil && outcome.hasMatch:
		b.removeEntryLocked(p.key)
		b.mu.Unlock()

		b.logger.WithFields(logrus.Fields{
			"call_key": p.key,
			"attempts": p.attempts,
		}).Info("Re-poll found a directory match")
		b.metrics.CallInfoEventsTotal.WithLabelValues("repoll").Inc()
		b.bus.FireCallInfo(call, outcome.contacts)

	case p.attempts >= p.maxAttempts:
		// Budget exhausted: give up silently.
		b.removeEntryLocked(p.key)
		b.mu.Unlock()

		b.logger.WithFields(logrus.Fields{
			"call_key": p.key,
			"attempts": p.attempts,
		}).Debug("Re-poll budget exhausted, dropping pending entry")

	default:
		p.timer = b.clock.AfterFunc(p.interval, func() {
			b.pollTick(p)
		})
		b.mu.Unlock()
	}
}

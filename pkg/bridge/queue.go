package bridge

import (
	"time"

	"github.com/sirupsen/logrus"

	"crm-softphone-connector/pkg/crm"
	"crm-softphone-connector/pkg/format"
	"crm-softphone-connector/pkg/models"
	"crm-softphone-connector/pkg/nav"
)

// pendingEntry is one call awaiting a "new contact" resolution. The CRM
// supports a single "create new record" modal at a time and never signals
// save-vs-cancel, so entries are presented one by one and resolved from
// navigation evidence plus bounded re-search polling.
type pendingEntry struct {
	call       models.Call
	payload    crm.ScreenPopPayload
	opened     bool
	current    bool
	enqueuedAt time.Time
}

// enqueueLocked registers a no-match call. Returns true when the caller
// should open the entry's modal immediately: nothing else is current and
// the page underneath is not itself a modal. Requires b.mu.
func (b *Bridge) enqueueLocked(call models.Call, payload crm.ScreenPopPayload) bool {
	key := call.Key()
	if b.entryLocked(key) != nil {
		return false
	}

	entry := &pendingEntry{
		call:       call,
		payload:    payload,
		enqueuedAt: b.clock.Now(),
	}

	popNow := b.currentEntryLocked() == nil && !nav.IsNewRecordModal(b.currentURL)
	if popNow {
		entry.opened = true
		entry.current = true
	}

	b.queue = append(b.queue, entry)
	b.metrics.PendingContactsCount.Set(float64(len(b.queue)))

	b.logger.WithFields(logrus.Fields{
		"call_key": key,
		"number":   call.PartyNumber,
		"pop_now":  popNow,
		"pending":  len(b.queue),
	}).Info("No directory match, queued for new-contact creation")

	return popNow
}

// popNewContactModal issues the stored continuation, opening the entry's
// "create new record" modal. Never called with b.mu held: the simulated
// toolkit delivers the resulting navigation event synchronously.
func (b *Bridge) popNewContactModal(call models.Call, payload crm.ScreenPopPayload, trigger string) {
	if err := b.crm.ScreenPop(b.ctx, payload); err != nil {
		b.logger.WithError(err).WithField("call_key", call.Key()).Error("Failed to open new-contact modal")
		return
	}
	b.metrics.ScreenPopsTotal.WithLabelValues(trigger).Inc()
}

// scheduleRunQueueLocked (re)arms the promotion debounce. Requires b.mu.
func (b *Bridge) scheduleRunQueueLocked() {
	if b.promoTimer != nil {
		b.promoTimer.Stop()
	}
	gen := b.gen
	b.promoTimer = b.clock.AfterFunc(b.cfg.QueuePromotionDelay(), func() {
		b.runQueue(gen)
	})
}

// runQueue promotes the oldest not-yet-opened entry to the active modal.
func (b *Bridge) runQueue(gen int) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.promoTimer = nil

	var next *pendingEntry
	for _, e := range b.queue {
		if !e.opened {
			next = e
			break
		}
	}
	if next == nil {
		b.mu.Unlock()
		return
	}

	if cur := b.currentEntryLocked(); cur != nil {
		cur.current = false
	}
	next.opened = true
	next.current = true
	call, payload := next.call, next.payload
	b.mu.Unlock()

	b.logger.WithField("call_key", call.Key()).Info("Promoting queued new-contact request")
	b.popNewContactModal(call, payload, "promotion")
}

// onNavigation feeds the reconciliation state machine. The navigation
// stream is the only evidence of what happened to an open modal: landing
// back on the recorded background page means cancel; landing elsewhere
// with concrete record metadata means save.
func (b *Bridge) onNavigation(ev models.NavigationEvent) {
	b.mu.Lock()

	if nav.SameURL(ev.URL, b.currentURL) {
		b.mu.Unlock()
		return
	}
	prev := b.currentURL
	b.currentURL = ev.URL

	if len(b.queue) == 0 {
		b.mu.Unlock()
		return
	}
	if nav.IsNewRecordModal(ev.URL) {
		// Mid-transition: a modal just opened, nothing resolved yet.
		b.mu.Unlock()
		return
	}
	if !nav.IsNewRecordModal(prev) {
		// Navigation unrelated to contact creation.
		b.mu.Unlock()
		return
	}

	var (
		resolvedKey   string
		notifyCall    models.Call
		notifyContact *models.Contact
		verdict       string
	)

	if active := b.currentEntryLocked(); active != nil {
		resolvedKey = active.call.Key()
		background := nav.BackgroundContextPath(prev)
		landed := nav.PathOf(ev.URL)

		switch {
		case background != "" && landed == background:
			// Returned to the page beneath the modal: cancelled.
			b.removeEntryLocked(resolvedKey)
			verdict = "cancelled"
		case ev.RecordID != "":
			contact := models.Contact{
				ID:   ev.RecordID,
				Name: format.RecordName(ev.RecordName, ev.ObjectType),
				Type: ev.ObjectType,
			}
			b.removeEntryLocked(resolvedKey)
			notifyCall = active.call
			notifyContact = &contact
			verdict = "saved"
		default:
			// Left the modal without clear evidence either way. Keep the
			// entry pending and let the boosted re-poll settle it.
			active.current = false
			verdict = "ambiguous"
		}
	}

	// Re-poll every opened-but-unresolved entry; the just-resolved call
	// gets the tighter budget to cover CRM indexing lag.
	for _, e := range b.queue {
		if e.opened {
			b.startRepollLocked(e.call, e.call.Key() == resolvedKey)
		}
	}
	b.scheduleRunQueueLocked()
	pending := len(b.queue)
	b.mu.Unlock()

	if verdict != "" {
		b.logger.WithFields(logrus.Fields{
			"call_key": resolvedKey,
			"verdict":  verdict,
			"pending":  pending,
		}).Info("New-contact modal closed")
	}

	if notifyContact != nil {
		b.metrics.CallInfoEventsTotal.WithLabelValues("navigation").Inc()
		b.bus.FireCallInfo(notifyCall, []models.Contact{*notifyContact})
	}
}

// entryLocked finds the pending entry for a call identity. Requires b.mu.
func (b *Bridge) entryLocked(key string) *pendingEntry {
	for _, e := range b.queue {
		if e.call.Key() == key {
			return e
		}
	}
	return nil
}

// currentEntryLocked returns the entry whose modal is showing, if any.
// At most one entry is current at any time. Requires b.mu.
func (b *Bridge) currentEntryLocked() *pendingEntry {
	for _, e := range b.queue {
		if e.current {
			return e
		}
	}
	return nil
}

// removeEntryLocked drops a pending entry and cancels its poller.
// Requires b.mu.
func (b *Bridge) removeEntryLocked(key string) {
	for i, e := range b.queue {
		if e.call.Key() == key {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			break
		}
	}
	if p, ok := b.pollers[key]; ok {
		p.stop()
		delete(b.pollers, key)
	}
	b.metrics.PendingContactsCount.Set(float64(len(b.queue)))
}

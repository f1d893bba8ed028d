package bridge

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"crm-softphone-connector/pkg/constants"
	"crm-softphone-connector/pkg/crm"
	"crm-softphone-connector/pkg/format"
	"crm-softphone-connector/pkg/models"
	"crm-softphone-connector/pkg/phone"
)

// searchOutcome is the classified result of one directory search.
type searchOutcome struct {
	contacts []models.Contact
	payload  crm.ScreenPopPayload
	hasMatch bool
}

// onCallUpdated registers a fresh call and runs the screen-pop search
// pipeline for it. Duplicate update events for the same call identity are
// no-ops; the widget repeats them on every status change.
func (b *Bridge) onCallUpdated(call models.Call) {
	key := call.Key()

	b.mu.Lock()
	if _, tracked := b.calls[key]; tracked {
		b.mu.Unlock()
		return
	}
	b.calls[key] = call
	b.metrics.TrackedCallsCount.Set(float64(len(b.calls)))
	b.mu.Unlock()

	b.logger.WithFields(logrus.Fields{
		"call_key": key,
		"number":   call.PartyNumber,
		"incoming": call.Incoming,
	}).Info("Tracking call")

	// Fresh arrivals surface the softphone panel; requeue-driven
	// re-searches never do.
	if err := b.crm.SetSoftphonePanelVisibility(b.ctx, true); err != nil {
		b.logger.WithError(err).Warn("Failed to show softphone panel")
	}

	outcome, err := b.searchCall(call)
	if err != nil {
		b.logger.WithError(err).WithField("call_key", key).Error("Directory search failed")
		return
	}

	b.mu.Lock()
	if _, tracked := b.calls[key]; !tracked {
		// Call ended while the search was in flight; drop the result.
		b.mu.Unlock()
		return
	}

	if outcome.hasMatch {
		b.mu.Unlock()
		b.metrics.CallInfoEventsTotal.WithLabelValues("search").Inc()
		b.bus.FireCallInfo(call, outcome.contacts)
		return
	}

	popNow := b.enqueueLocked(call, outcome.payload)
	b.mu.Unlock()

	if popNow {
		b.popNewContactModal(call, outcome.payload, "immediate")
	}
}

// onCallEnded removes the call from tracking regardless of pipeline state.
// Pending queue entries survive call end; only a match, navigation
// evidence, poll exhaustion or logout removes those.
func (b *Bridge) onCallEnded(call models.Call) {
	key := call.Key()

	b.mu.Lock()
	_, tracked := b.calls[key]
	delete(b.calls, key)
	b.metrics.TrackedCallsCount.Set(float64(len(b.calls)))
	b.mu.Unlock()

	if tracked {
		b.logger.WithField("call_key", key).Info("Call ended")
	}
}

// searchCall issues one CRM directory search for the call's party number
// and classifies the raw result. The CRM's continuation marker entry is
// not a match and is filtered out before counting.
func (b *Bridge) searchCall(call models.Call) (searchOutcome, error) {
	number := phone.Normalize(call.PartyNumber, b.cfg.DefaultRegion)

	callType := crm.CallTypeOutbound
	if call.Incoming {
		callType = crm.CallTypeInbound
	}

	start := time.Now()
	result, err := b.crm.SearchAndScreenPop(b.ctx, crm.SearchRequest{
		Number:             number,
		CallType:           callType,
		DefaultFieldValues: map[string]string{"Phone": call.PartyNumber},
	})
	b.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return searchOutcome{}, fmt.Errorf("search for %q: %w", number, err)
	}

	var outcome searchOutcome
	records := make([]models.Record, 0, len(result.Entries))
	for key, raw := range result.Entries {
		if key == constants.ScreenPopDataKey {
			outcome.payload = raw
			continue
		}
		var rec models.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			b.logger.WithError(err).WithField("entry", key).Warn("Skipping malformed search entry")
			continue
		}
		if rec.ID == "" {
			rec.ID = key
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	for _, rec := range records {
		outcome.contacts = append(outcome.contacts, format.ContactFromRecord(rec))
	}
	outcome.hasMatch = len(outcome.contacts) > 0

	return outcome, nil
}

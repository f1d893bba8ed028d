package bridge

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-softphone-connector/pkg/models"
)

func assertAtMostOneCurrent(t *testing.T, entries []PendingEntry) {
	t.Helper()
	current := 0
	for _, e := range entries {
		if e.Current {
			current++
		}
	}
	assert.LessOrEqual(t, current, 1, "more than one entry is current")
}

func TestNoMatchOpensModalImmediately(t *testing.T) {
	f := setup(t)

	f.bus.EmitCallUpdated(testCall("c1", "room1", "999-0000", true))

	entries := f.bridge.PendingEntries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Opened)
	assert.True(t, entries[0].Current)
	assertAtMostOneCurrent(t, entries)

	require.Len(t, f.crm.Pops(), 1)
	assert.Contains(t, f.crm.LastPopURL(), "/lightning/o/Contact/new")
	assert.Empty(t, f.bus.CallInfos)
}

func TestSecondNoMatchWaitsForActiveModal(t *testing.T) {
	f := setup(t)

	f.bus.EmitCallUpdated(testCall("c1", "room1", "999-0000", true))
	f.bus.EmitCallUpdated(testCall("c2", "room2", "999-1111", true))

	entries := f.bridge.PendingEntries()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Opened)
	assert.True(t, entries[0].Current)
	assert.False(t, entries[1].Opened)
	assert.False(t, entries[1].Current)
	assertAtMostOneCurrent(t, entries)

	// Only the first entry's modal was popped.
	assert.Len(t, f.crm.Pops(), 1)
}

func TestCancelPromotesNextQueuedEntry(t *testing.T) {
	f := setup(t)

	f.bus.EmitCallUpdated(testCall("c1", "room1", "999-0000", true))
	f.bus.EmitCallUpdated(testCall("c2", "room2", "999-1111", true))

	// Agent dismisses the first modal: the CRM lands back on the page
	// that was beneath it.
	f.crm.Navigate(models.NavigationEvent{URL: "/lightning/page/home"})

	entries := f.bridge.PendingEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "room2c2", entries[0].CallKey)
	assert.False(t, entries[0].Opened)

	// No call-info for a cancelled entry.
	assert.Empty(t, f.bus.CallInfos)

	// The next entry is promoted after the debounce delay.
	f.clk.Add(2500 * time.Millisecond)

	entries = f.bridge.PendingEntries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Opened)
	assert.True(t, entries[0].Current)
	assertAtMostOneCurrent(t, entries)
	assert.Len(t, f.crm.Pops(), 2)
	assert.Contains(t, f.crm.LastPopURL(), "/lightning/o/Contact/new")
}

func TestSaveNavigationAttachesNewRecord(t *testing.T) {
	f := setup(t)

	call := testCall("c1", "room1", "555-1234", true)
	f.bus.EmitCallUpdated(call)

	require.Len(t, f.crm.Pops(), 1)
	require.Len(t, f.bridge.PendingEntries(), 1)

	// Agent saves the new contact: the CRM navigates to the fresh record
	// page, carrying its metadata.
	f.crm.AddRecord(models.Record{ID: "003xx", Name: "Jane Doe", RecordType: "Contact", Phone: "555-1234"})
	f.crm.Navigate(models.NavigationEvent{
		URL:        "/lightning/r/Contact/003xx/view",
		ObjectType: "Contact",
		RecordID:   "003xx",
		RecordName: "Jane Doe",
	})

	require.Len(t, f.bus.CallInfos, 1)
	info := f.bus.CallInfos[0]
	assert.Equal(t, call.Key(), info.Call.Key())
	require.Len(t, info.Contacts, 1)
	assert.Equal(t, "003xx", info.Contacts[0].ID)
	assert.Equal(t, "Jane Doe [Contact]", info.Contacts[0].Name)

	assert.Empty(t, f.bridge.PendingEntries())

	// Nothing left to poll or promote.
	f.clk.Add(time.Hour)
	assert.Len(t, f.bus.CallInfos, 1)
	assert.Len(t, f.crm.Pops(), 1)
}

func TestSameURLNavigationIsNoOp(t *testing.T) {
	f := setup(t)

	f.bus.EmitCallUpdated(testCall("c1", "room1", "999-0000", true))
	modalURL := f.crm.CurrentURL()
	before := f.bridge.PendingEntries()

	f.crm.Navigate(models.NavigationEvent{URL: modalURL})

	assert.Equal(t, before, f.bridge.PendingEntries())
	assert.Empty(t, f.bus.CallInfos)
	assert.Len(t, f.crm.Pops(), 1)
}

func TestUnrelatedNavigationIgnored(t *testing.T) {
	f := setup(t)

	// Queue is empty: navigation is just recorded.
	f.crm.Navigate(models.NavigationEvent{URL: "/lightning/r/Account/001xx/view"})
	assert.Equal(t, "/lightning/r/Account/001xx/view", f.bridge.CurrentURL())
	assert.Empty(t, f.bus.CallInfos)
}

func TestAmbiguousCloseResolvedByBoostedRepoll(t *testing.T) {
	f := setup(t)

	call := testCall("c1", "room1", "555-1234", true)
	f.bus.EmitCallUpdated(call)
	require.Len(t, f.bridge.PendingEntries(), 1)

	// Agent wanders off the modal without saving through the expected
	// path: no record metadata, not the background page.
	f.crm.Navigate(models.NavigationEvent{URL: "/lightning/page/reports"})

	entries := f.bridge.PendingEntries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Opened)
	assert.False(t, entries[0].Current)

	// The contact shows up in the directory a moment later.
	f.crm.AddRecord(models.Record{ID: "003xx", Name: "Jane Doe", RecordType: "Contact", Phone: "555-1234"})
	f.clk.Add(1500 * time.Millisecond)

	require.Len(t, f.bus.CallInfos, 1)
	assert.Equal(t, "Jane Doe [Contact]", f.bus.CallInfos[0].Contacts[0].Name)
	assert.Empty(t, f.bridge.PendingEntries())

	// The poller is cancelled with the entry: exactly one attempt, ever.
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RepollAttemptsTotal))
	f.clk.Add(time.Hour)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RepollAttemptsTotal))
	assert.Len(t, f.bus.CallInfos, 1)
}

func TestRepollBudgetExhaustionDropsEntry(t *testing.T) {
	f := setup(t)
	f.cfg.BoostRepollMaxAttempts = 10

	f.bus.EmitCallUpdated(testCall("c1", "room1", "999-0000", true))
	f.crm.Navigate(models.NavigationEvent{URL: "/lightning/page/reports"})

	require.Len(t, f.bridge.PendingEntries(), 1)

	// No record ever appears; the poller gives up silently after its
	// attempt budget.
	f.clk.Add(10 * 1500 * time.Millisecond)

	assert.Empty(t, f.bridge.PendingEntries())
	assert.Empty(t, f.bus.CallInfos)
	assert.Equal(t, float64(10), testutil.ToFloat64(f.metrics.RepollAttemptsTotal))

	// No 11th poll.
	f.clk.Add(time.Hour)
	assert.Equal(t, float64(10), testutil.ToFloat64(f.metrics.RepollAttemptsTotal))
}

func TestLogoutClearsQueueAndTimers(t *testing.T) {
	f := setup(t)

	f.bus.EmitCallUpdated(testCall("c1", "room1", "999-0000", true))
	f.bus.EmitCallUpdated(testCall("c2", "room2", "999-1111", true))
	require.Len(t, f.bridge.PendingEntries(), 2)

	// Arm a poller via an ambiguous modal close.
	f.crm.Navigate(models.NavigationEvent{URL: "/lightning/page/reports"})

	f.bus.EmitLoggedOut()

	assert.Empty(t, f.bridge.PendingEntries())
	assert.Equal(t, 0, f.bridge.TrackedCallCount())
	assert.Equal(t, "", f.bridge.CurrentURL())

	// A fresh login starts from empty state and nothing fires later.
	f.bus.EmitLoggedIn()
	assert.Empty(t, f.bridge.PendingEntries())

	pops := len(f.crm.Pops())
	f.clk.Add(time.Hour)
	assert.Empty(t, f.bridge.PendingEntries())
	assert.Len(t, f.crm.Pops(), pops)
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.RepollAttemptsTotal))
	assert.Empty(t, f.bus.CallInfos)
}

func TestCallEndLeavesPendingEntry(t *testing.T) {
	f := setup(t)

	call := testCall("c1", "room1", "999-0000", true)
	f.bus.EmitCallUpdated(call)
	f.bus.EmitCallEnded(call)

	// Tracking is gone but the new-contact request survives until
	// resolved by evidence, polling, or logout.
	assert.Equal(t, 0, f.bridge.TrackedCallCount())
	assert.Len(t, f.bridge.PendingEntries(), 1)
}

func TestEndToEndNoMatchThenSave(t *testing.T) {
	f := setup(t)

	call := testCall("c1", "room1", "555-1234", true)
	f.bus.EmitCallUpdated(call)

	// No other active entry and not on a modal page: the stored
	// continuation is popped immediately.
	require.Len(t, f.crm.Pops(), 1)
	assert.Contains(t, f.crm.LastPopURL(), "/lightning/o/Contact/new")
	assert.Contains(t, f.crm.LastPopURL(), "backgroundContext")

	f.crm.Navigate(models.NavigationEvent{
		URL:        "/lightning/r/Contact/003xx/view",
		ObjectType: "Contact",
		RecordID:   "003xx",
		RecordName: "Jane Doe",
	})

	require.Len(t, f.bus.CallInfos, 1)
	contacts := f.bus.CallInfos[0].Contacts
	require.Len(t, contacts, 1)
	assert.Equal(t, "003xx", contacts[0].ID)
	assert.Equal(t, "Jane Doe [Contact]", contacts[0].Name)
	assert.Empty(t, f.bridge.PendingEntries())
}

package crm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-softphone-connector/pkg/constants"
	"crm-softphone-connector/pkg/models"
)

func TestSearchReturnsMatchesAndContinuation(t *testing.T) {
	client := NewMemoryClient(
		models.Record{ID: "003xx1", Name: "Jane Doe", RecordType: "Contact", Phone: "555-1234"},
		models.Record{ID: "003xx2", Name: "John Doe", RecordType: "Contact", Phone: "555-9999"},
	)

	result, err := client.SearchAndScreenPop(context.Background(), SearchRequest{
		Number:   "(555) 1234",
		CallType: CallTypeInbound,
	})
	require.NoError(t, err)

	// One real match plus the reserved continuation entry.
	require.Len(t, result.Entries, 2)

	raw, ok := result.Entries["003xx1"]
	require.True(t, ok)
	var rec models.Record
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Equal(t, "Jane Doe", rec.Name)

	popData, ok := result.Entries[constants.ScreenPopDataKey]
	require.True(t, ok)
	target, err := PopURL(popData)
	require.NoError(t, err)
	assert.Contains(t, target, "/lightning/o/Contact/new")
}

func TestSearchMissStillCarriesContinuation(t *testing.T) {
	client := NewMemoryClient()

	result, err := client.SearchAndScreenPop(context.Background(), SearchRequest{
		Number: "999-0000",
	})
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	_, ok := result.Entries[constants.ScreenPopDataKey]
	assert.True(t, ok)
}

func TestScreenPopNavigatesAndNotifies(t *testing.T) {
	client := NewMemoryClient()

	var seen []models.NavigationEvent
	client.OnNavigationChange(func(ev models.NavigationEvent) {
		seen = append(seen, ev)
	})

	payload := RecordPopPayload("Contact", "003xx1")
	require.NoError(t, client.ScreenPop(context.Background(), payload))

	assert.Equal(t, "/lightning/r/Contact/003xx1/view", client.CurrentURL())
	require.Len(t, seen, 1)
	assert.Equal(t, "/lightning/r/Contact/003xx1/view", seen[0].URL)
}

func TestModalNavigationKeepsBackgroundPage(t *testing.T) {
	client := NewMemoryClient()

	client.Navigate(models.NavigationEvent{URL: "/lightning/r/Account/001xx/view"})
	client.Navigate(models.NavigationEvent{URL: "/lightning/o/Contact/new"})

	// A later search records the page beneath the modal, not the modal.
	result, err := client.SearchAndScreenPop(context.Background(), SearchRequest{Number: "999-0000"})
	require.NoError(t, err)

	target, err := PopURL(result.Entries[constants.ScreenPopDataKey])
	require.NoError(t, err)
	assert.Contains(t, target, "backgroundContext=%2Flightning%2Fr%2FAccount%2F001xx%2Fview")
}

func TestClickToDialRequiresEnable(t *testing.T) {
	client := NewMemoryClient()

	var dials []models.DialRequest
	client.OnClickToDial(func(req models.DialRequest) {
		dials = append(dials, req)
	})

	client.ClickToDial(models.DialRequest{Number: "555-1234"})
	assert.Empty(t, dials)

	require.NoError(t, client.EnableClickToDial(context.Background()))
	client.ClickToDial(models.DialRequest{Number: "555-1234"})
	require.Len(t, dials, 1)
	assert.Equal(t, "555-1234", dials[0].Number)
}

func TestFailNextSave(t *testing.T) {
	client := NewMemoryClient()

	client.FailNextSave(SaveError{Code: "LIMIT_EXCEEDED", Message: "too many tasks"})

	result, err := client.SaveLog(context.Background(), models.ActivityLog{Subject: "x"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "too many tasks", result.FirstError())
	assert.Empty(t, client.SavedLogs())

	// Failure injection is one-shot.
	result, err = client.SaveLog(context.Background(), models.ActivityLog{Subject: "x"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, client.SavedLogs(), 1)
}

func TestPopURLRejectsMalformedPayload(t *testing.T) {
	_, err := PopURL(json.RawMessage(`{"url":""}`))
	assert.Error(t, err)

	_, err = PopURL(json.RawMessage(`not json`))
	assert.Error(t, err)
}

package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"crm-softphone-connector/pkg/constants"
	"crm-softphone-connector/pkg/models"
	"crm-softphone-connector/pkg/nav"
	"crm-softphone-connector/pkg/phone"
)

// MemoryClient simulates the CRM toolkit for the sandbox and tests: a
// record directory, a current page, and a navigation event stream. A
// ScreenPop navigates the simulated page and emits the same navigation
// event a real toolkit would.
type MemoryClient struct {
	mu sync.Mutex

	records    []models.Record
	savedLogs  []models.ActivityLog
	currentURL string

	// lastPageURL is the most recent non-modal page; modals overlay it,
	// so it is what the toolkit reports as background context.
	lastPageURL string

	panelVisible       bool
	clickToDialEnabled bool

	navListeners  []func(models.NavigationEvent)
	dialListeners []func(models.DialRequest)

	pops []ScreenPopPayload

	nextSaveErrs []SaveError
	saveSeq      int
}

func NewMemoryClient(records ...models.Record) *MemoryClient {
	return &MemoryClient{
		records:     records,
		currentURL:  "/lightning/page/home",
		lastPageURL: "/lightning/page/home",
	}
}

func (m *MemoryClient) SearchAndScreenPop(ctx context.Context, req SearchRequest) (SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make(map[string]json.RawMessage)

	want := phone.Digits(req.Number)
	if want != "" {
		for _, rec := range m.records {
			if phone.Digits(rec.Phone) == want {
				raw, err := json.Marshal(rec)
				if err != nil {
					return SearchResult{}, fmt.Errorf("marshal record %s: %w", rec.ID, err)
				}
				entries[rec.ID] = raw
			}
		}
	}

	// The toolkit always returns the deferred continuation alongside any
	// matches; for a miss it opens a pre-filled "new record" modal.
	entries[constants.ScreenPopDataKey] = NewRecordPopPayload(
		"Contact", nav.PathOf(m.lastPageURL), req.Number)

	return SearchResult{Entries: entries}, nil
}

func (m *MemoryClient) ScreenPop(ctx context.Context, payload ScreenPopPayload) error {
	target, err := PopURL(payload)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.pops = append(m.pops, payload)
	m.mu.Unlock()

	m.Navigate(models.NavigationEvent{URL: target})
	return nil
}

func (m *MemoryClient) SaveLog(ctx context.Context, log models.ActivityLog) (SaveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.nextSaveErrs) > 0 {
		errs := m.nextSaveErrs
		m.nextSaveErrs = nil
		return SaveResult{Success: false, Errors: errs}, nil
	}

	m.saveSeq++
	m.savedLogs = append(m.savedLogs, log)
	return SaveResult{Success: true, LogID: fmt.Sprintf("00Txx%04d", m.saveSeq)}, nil
}

func (m *MemoryClient) SetSoftphonePanelVisibility(ctx context.Context, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panelVisible = visible
	return nil
}

func (m *MemoryClient) RefreshView(ctx context.Context) error {
	return nil
}

func (m *MemoryClient) EnableClickToDial(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clickToDialEnabled = true
	return nil
}

func (m *MemoryClient) DisableClickToDial(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clickToDialEnabled = false
	return nil
}

func (m *MemoryClient) OnClickToDial(listener func(models.DialRequest)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialListeners = append(m.dialListeners, listener)
}

func (m *MemoryClient) OnNavigationChange(listener func(models.NavigationEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navListeners = append(m.navListeners, listener)
}

// Navigate moves the simulated page and notifies navigation listeners,
// standing in for agent-driven navigation in the real CRM.
func (m *MemoryClient) Navigate(ev models.NavigationEvent) {
	m.mu.Lock()
	m.currentURL = ev.URL
	if !nav.IsNewRecordModal(ev.URL) {
		m.lastPageURL = ev.URL
	}
	listeners := make([]func(models.NavigationEvent), len(m.navListeners))
	copy(listeners, m.navListeners)
	m.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

// ClickToDial simulates the agent clicking a phone number in the CRM.
func (m *MemoryClient) ClickToDial(req models.DialRequest) {
	m.mu.Lock()
	enabled := m.clickToDialEnabled
	listeners := make([]func(models.DialRequest), len(m.dialListeners))
	copy(listeners, m.dialListeners)
	m.mu.Unlock()

	if !enabled {
		return
	}
	for _, l := range listeners {
		l(req)
	}
}

// AddRecord inserts a directory record, simulating a save in the CRM.
func (m *MemoryClient) AddRecord(rec models.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
}

// FailNextSave makes the next SaveLog report the given errors.
func (m *MemoryClient) FailNextSave(errs ...SaveError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(errs) == 0 {
		errs = []SaveError{{Code: "UNKNOWN", Message: "save rejected"}}
	}
	m.nextSaveErrs = errs
}

func (m *MemoryClient) CurrentURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentURL
}

func (m *MemoryClient) PanelVisible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panelVisible
}

func (m *MemoryClient) ClickToDialEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clickToDialEnabled
}

func (m *MemoryClient) Pops() []ScreenPopPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ScreenPopPayload, len(m.pops))
	copy(out, m.pops)
	return out
}

func (m *MemoryClient) SavedLogs() []models.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ActivityLog, len(m.savedLogs))
	copy(out, m.savedLogs)
	return out
}

// LastPopURL returns the navigation target of the most recent screen-pop.
func (m *MemoryClient) LastPopURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pops) == 0 {
		return ""
	}
	target, err := PopURL(m.pops[len(m.pops)-1])
	if err != nil {
		return ""
	}
	return target
}

var _ Client = (*MemoryClient)(nil)

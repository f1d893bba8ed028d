package widget

import (
	"sync"

	"crm-softphone-connector/pkg/models"
)

// CallInfo is one recorded call-info event: the call plus the contacts
// offered to the agent.
type CallInfo struct {
	Call     models.Call
	Contacts []models.Contact
}

// MemoryBus is an in-process widget bus for the sandbox and tests. It
// records everything the connector fires so outcomes can be inspected.
type MemoryBus struct {
	mu sync.Mutex

	loggedInListeners        []func()
	loggedOutListeners       []func()
	callUpdatedListeners     []func(models.Call)
	callEndedListeners       []func(models.Call)
	callRecordedListeners    []func(models.CallRecording)
	logListeners             []func(models.LogRequest)
	contactSelectedListeners []func(models.ContactSelection)

	MakeCalls     []string
	CallInfos     []CallInfo
	SavedLogs     []models.LogRequest
	FailedLogs    []models.LogRequest
	Notifications []models.Notification
	Configs       []models.ConfigEvent
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) OnLoggedIn(listener func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loggedInListeners = append(b.loggedInListeners, listener)
}

func (b *MemoryBus) OnLoggedOut(listener func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loggedOutListeners = append(b.loggedOutListeners, listener)
}

func (b *MemoryBus) OnCallUpdated(listener func(models.Call)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callUpdatedListeners = append(b.callUpdatedListeners, listener)
}

func (b *MemoryBus) OnCallEnded(listener func(models.Call)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callEndedListeners = append(b.callEndedListeners, listener)
}

func (b *MemoryBus) OnCallRecorded(listener func(models.CallRecording)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callRecordedListeners = append(b.callRecordedListeners, listener)
}

func (b *MemoryBus) OnLog(listener func(models.LogRequest)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logListeners = append(b.logListeners, listener)
}

func (b *MemoryBus) OnContactSelected(listener func(models.ContactSelection)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contactSelectedListeners = append(b.contactSelectedListeners, listener)
}

func (b *MemoryBus) FireMakeCall(number string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.MakeCalls = append(b.MakeCalls, number)
}

func (b *MemoryBus) FireCallInfo(call models.Call, contacts []models.Contact) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CallInfos = append(b.CallInfos, CallInfo{Call: call, Contacts: contacts})
}

func (b *MemoryBus) FireLogSaved(log models.LogRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SavedLogs = append(b.SavedLogs, log)
}

func (b *MemoryBus) FireLogFailed(log models.LogRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.FailedLogs = append(b.FailedLogs, log)
}

func (b *MemoryBus) FireNotification(n models.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Notifications = append(b.Notifications, n)
}

func (b *MemoryBus) FireConfig(ev models.ConfigEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Configs = append(b.Configs, ev)
}

func (b *MemoryBus) EmitLoggedIn() {
	for _, l := range b.snapshotLoggedIn() {
		l()
	}
}

func (b *MemoryBus) EmitLoggedOut() {
	for _, l := range b.snapshotLoggedOut() {
		l()
	}
}

func (b *MemoryBus) EmitCallUpdated(call models.Call) {
	b.mu.Lock()
	listeners := append([]func(models.Call){}, b.callUpdatedListeners...)
	b.mu.Unlock()
	for _, l := range listeners {
		l(call)
	}
}

func (b *MemoryBus) EmitCallEnded(call models.Call) {
	b.mu.Lock()
	listeners := append([]func(models.Call){}, b.callEndedListeners...)
	b.mu.Unlock()
	for _, l := range listeners {
		l(call)
	}
}

func (b *MemoryBus) EmitCallRecorded(rec models.CallRecording) {
	b.mu.Lock()
	listeners := append([]func(models.CallRecording){}, b.callRecordedListeners...)
	b.mu.Unlock()
	for _, l := range listeners {
		l(rec)
	}
}

func (b *MemoryBus) EmitLog(req models.LogRequest) {
	b.mu.Lock()
	listeners := append([]func(models.LogRequest){}, b.logListeners...)
	b.mu.Unlock()
	for _, l := range listeners {
		l(req)
	}
}

func (b *MemoryBus) EmitContactSelected(sel models.ContactSelection) {
	b.mu.Lock()
	listeners := append([]func(models.ContactSelection){}, b.contactSelectedListeners...)
	b.mu.Unlock()
	for _, l := range listeners {
		l(sel)
	}
}

func (b *MemoryBus) snapshotLoggedIn() []func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]func(){}, b.loggedInListeners...)
}

func (b *MemoryBus) snapshotLoggedOut() []func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]func(){}, b.loggedOutListeners...)
}

// LastCallInfo returns the most recent call-info event, or nil.
func (b *MemoryBus) LastCallInfo() *CallInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.CallInfos) == 0 {
		return nil
	}
	info := b.CallInfos[len(b.CallInfos)-1]
	return &info
}

var (
	_ Bus     = (*MemoryBus)(nil)
	_ Emitter = (*MemoryBus)(nil)
)

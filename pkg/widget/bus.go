// Package widget defines the boundary to the softphone widget's event bus.
package widget

import "crm-softphone-connector/pkg/models"

// Bus is the widget surface consumed by the connector: lifecycle listeners
// on one side, fire methods on the other.
type Bus interface {
	OnLoggedIn(listener func())
	OnLoggedOut(listener func())
	OnCallUpdated(listener func(models.Call))
	OnCallEnded(listener func(models.Call))
	OnCallRecorded(listener func(models.CallRecording))
	OnLog(listener func(models.LogRequest))
	OnContactSelected(listener func(models.ContactSelection))

	FireMakeCall(number string)
	FireCallInfo(call models.Call, contacts []models.Contact)
	FireLogSaved(log models.LogRequest)
	FireLogFailed(log models.LogRequest)
	FireNotification(n models.Notification)
	FireConfig(ev models.ConfigEvent)
}

// Emitter injects widget-side events onto a bus. Implemented by MemoryBus;
// used by the sandbox HTTP ingress and tests.
type Emitter interface {
	EmitLoggedIn()
	EmitLoggedOut()
	EmitCallUpdated(call models.Call)
	EmitCallEnded(call models.Call)
	EmitCallRecorded(rec models.CallRecording)
	EmitLog(req models.LogRequest)
	EmitContactSelected(sel models.ContactSelection)
}

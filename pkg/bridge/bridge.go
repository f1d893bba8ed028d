// Package bridge wires softphone widget events to CRM toolkit actions and
// back. It owns all session-scoped state: tracked calls, the new-contact
// queue, re-search pollers, recording ids and the last-seen page URL.
// Everything is cleared on logout; nothing leaks across login sessions.
package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"crm-softphone-connector/pkg/config"
	"crm-softphone-connector/pkg/constants"
	"crm-softphone-connector/pkg/crm"
	"crm-softphone-connector/pkg/metrics"
	"crm-softphone-connector/pkg/models"
	"crm-softphone-connector/pkg/widget"
)

type Bridge struct {
	cfg     *config.Config
	logger  *logrus.Logger
	metrics *metrics.Metrics
	clock   clock.Clock
	crm     crm.Client
	bus     widget.Bus

	ctx context.Context

	mu         sync.Mutex
	gen        int
	loggedIn   bool
	calls      map[string]models.Call
	recordings map[string]string
	currentURL string
	queue      []*pendingEntry
	pollers    map[string]*poller
	promoTimer *clock.Timer
}

func New(cfg *config.Config, crmClient crm.Client, bus widget.Bus, logger *logrus.Logger, m *metrics.Metrics, clk clock.Clock) *Bridge {
	return &Bridge{
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		clock:      clk,
		crm:        crmClient,
		bus:        bus,
		ctx:        context.Background(),
		calls:      make(map[string]models.Call),
		recordings: make(map[string]string),
		pollers:    make(map[string]*poller),
	}
}

// Start subscribes to both event sources. Events begin flowing as soon as
// the listeners are registered.
func (b *Bridge) Start(ctx context.Context) {
	b.ctx = ctx

	b.crm.OnClickToDial(b.onClickToDial)
	b.crm.OnNavigationChange(b.onNavigation)

	b.bus.OnLoggedIn(b.onLoggedIn)
	b.bus.OnLoggedOut(b.onLoggedOut)
	b.bus.OnCallUpdated(b.onCallUpdated)
	b.bus.OnCallEnded(b.onCallEnded)
	b.bus.OnCallRecorded(b.onCallRecorded)
	b.bus.OnLog(b.onLog)
	b.bus.OnContactSelected(b.onContactSelected)

	b.logger.WithField("connector_id", b.cfg.ConnectorID).Info("Bridge started")
}

// Stop cancels all outstanding timers. State is left in place; a logout
// event is the signal for a full reset.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopTimersLocked()
}

func (b *Bridge) onLoggedIn() {
	b.mu.Lock()
	b.loggedIn = true
	b.mu.Unlock()

	if err := b.crm.EnableClickToDial(b.ctx); err != nil {
		b.logger.WithError(err).Error("Failed to enable click-to-dial")
	}
	b.bus.FireConfig(b.logSchema())

	b.logger.Info("Widget session logged in")
}

func (b *Bridge) onLoggedOut() {
	b.mu.Lock()
	b.gen++
	b.loggedIn = false
	b.stopTimersLocked()
	b.calls = make(map[string]models.Call)
	b.recordings = make(map[string]string)
	b.queue = nil
	b.currentURL = ""
	b.metrics.TrackedCallsCount.Set(0)
	b.metrics.PendingContactsCount.Set(0)
	b.mu.Unlock()

	if err := b.crm.DisableClickToDial(b.ctx); err != nil {
		b.logger.WithError(err).Error("Failed to disable click-to-dial")
	}

	b.logger.Info("Widget session logged out, session state cleared")
}

func (b *Bridge) stopTimersLocked() {
	for _, p := range b.pollers {
		p.stop()
	}
	b.pollers = make(map[string]*poller)
	if b.promoTimer != nil {
		b.promoTimer.Stop()
		b.promoTimer = nil
	}
}

func (b *Bridge) onClickToDial(req models.DialRequest) {
	b.logger.WithField("number", req.Number).Debug("Click-to-dial")
	b.bus.FireMakeCall(req.Number)
}

func (b *Bridge) onCallRecorded(rec models.CallRecording) {
	b.mu.Lock()
	b.recordings[rec.RoomID] = rec.RecordingID
	b.mu.Unlock()

	b.logger.WithFields(logrus.Fields{
		"room_id":      rec.RoomID,
		"recording_id": rec.RecordingID,
	}).Debug("Call recording registered")
}

func (b *Bridge) onContactSelected(sel models.ContactSelection) {
	payload := crm.RecordPopPayload(sel.ContactType, sel.ContactID)
	if err := b.crm.ScreenPop(b.ctx, payload); err != nil {
		b.logger.WithError(err).WithField("record_id", sel.ContactID).Error("Failed to pop selected contact")
		return
	}
	b.metrics.ScreenPopsTotal.WithLabelValues("record").Inc()
}

func (b *Bridge) onLog(req models.LogRequest) {
	if req.ContactID == "" {
		b.logger.WithField("call_key", req.Call.Key()).Warn("Log request without an associated contact")
		b.notify(models.NotificationError, constants.MsgCallNotAssociated)
		return
	}

	activity := b.buildActivityLog(req)

	result, err := b.crm.SaveLog(b.ctx, activity)
	if err != nil || !result.Success {
		first := result.FirstError()
		if first == "" && err != nil {
			first = err.Error()
		}
		b.logger.WithFields(logrus.Fields{
			"call_key": req.Call.Key(),
			"error":    first,
		}).Error("Failed to save call log")
		b.metrics.LogSavesTotal.WithLabelValues("failure").Inc()
		b.bus.FireLogFailed(req)
		b.notify(models.NotificationError, constants.MsgLogSaveFailed)
		return
	}

	b.metrics.LogSavesTotal.WithLabelValues("success").Inc()
	b.bus.FireLogSaved(req)
	if err := b.crm.RefreshView(b.ctx); err != nil {
		b.logger.WithError(err).Warn("Failed to refresh CRM view after log save")
	}

	b.mu.Lock()
	delete(b.recordings, req.Call.PbxRoomID)
	b.mu.Unlock()

	b.logger.WithFields(logrus.Fields{
		"call_key": req.Call.Key(),
		"log_id":   result.LogID,
	}).Info("Call log saved")
}

func (b *Bridge) buildActivityLog(req models.LogRequest) models.ActivityLog {
	call := req.Call

	callType := constants.CallTypeOutbound
	if call.Incoming {
		callType = constants.CallTypeInbound
	}

	b.mu.Lock()
	recordingID := b.recordings[call.PbxRoomID]
	b.mu.Unlock()

	callObject := req.Recording
	if callObject == "" {
		callObject = recordingID
	}
	if callObject == "" {
		callObject = strings.TrimSpace(fmt.Sprintf("%s %s.%d %s", call.Tenant, call.ID, call.CreatedAt.Unix(), call.User))
	}

	subject := req.Subject
	if subject == "" {
		subject = defaultSubject(call)
	}

	return models.ActivityLog{
		Subject:           subject,
		Status:            constants.LogStatusCompleted,
		CallType:          callType,
		CallObject:        callObject,
		Phone:             call.PartyNumber,
		Description:       req.Description,
		CallDisposition:   req.Result,
		CallDurationInSec: call.DurationSeconds(b.clock.Now()),
		WhoID:             req.ContactID,
		WhatID:            req.RelatedID,
		EntityAPIName:     constants.LogEntityAPIName,
	}
}

func (b *Bridge) notify(kind models.NotificationType, message string) {
	b.metrics.NotificationsTotal.WithLabelValues(string(kind)).Inc()
	b.bus.FireNotification(models.Notification{Type: kind, Message: message})
}

func (b *Bridge) logSchema() models.ConfigEvent {
	return models.ConfigEvent{
		LogInputs: []models.LogInput{
			{
				Name:         "subject",
				Label:        "Subject",
				Kind:         "text",
				Required:     true,
				DefaultValue: defaultSubject,
			},
			{
				Name:  "description",
				Label: "Comments",
				Kind:  "textarea",
			},
			{
				Name:  "result",
				Label: "Call result",
				Kind:  "text",
			},
		},
	}
}

func defaultSubject(call models.Call) string {
	if call.Incoming {
		return "Inbound call from " + call.PartyNumber
	}
	return "Outbound call to " + call.PartyNumber
}

// LoggedIn reports whether a widget session is active.
func (b *Bridge) LoggedIn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loggedIn
}

// TrackedCallCount is the number of calls currently in flight.
func (b *Bridge) TrackedCallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// CurrentURL is the last-seen CRM page URL.
func (b *Bridge) CurrentURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentURL
}

// PendingEntry is a read-only snapshot of one queued new-contact request.
type PendingEntry struct {
	CallKey     string `json:"call_key"`
	PartyNumber string `json:"party_number"`
	Opened      bool   `json:"opened"`
	Current     bool   `json:"current"`
}

// PendingEntries snapshots the new-contact queue, oldest first.
func (b *Bridge) PendingEntries() []PendingEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]PendingEntry, 0, len(b.queue))
	for _, e := range b.queue {
		out = append(out, PendingEntry{
			CallKey:     e.call.Key(),
			PartyNumber: e.call.PartyNumber,
			Opened:      e.opened,
			Current:     e.current,
		})
	}
	return out
}

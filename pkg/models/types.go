package models

import "time"

// Call represents one phone call as reported by the softphone widget.
// The widget owns the call; the connector only references it.
type Call struct {
	ID          string     `json:"id"`
	PbxRoomID   string     `json:"pbx_room_id"`
	Incoming    bool       `json:"incoming"`
	PartyNumber string     `json:"party_number"`
	CreatedAt   time.Time  `json:"created_at"`
	AnsweredAt  *time.Time `json:"answered_at,omitempty"`
	Tenant      string     `json:"tenant,omitempty"`
	User        string     `json:"user,omitempty"`
}

// Key is the stable call identity: room id and call id concatenated.
// The widget never reuses the combination across distinct calls.
func (c Call) Key() string {
	return c.PbxRoomID + c.ID
}

// DurationSeconds derives the call duration at logging time.
func (c Call) DurationSeconds(now time.Time) int {
	start := c.CreatedAt
	if c.AnsweredAt != nil {
		start = *c.AnsweredAt
	}
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// Contact is the normalized shape handed back to the widget in call-info
// events: a CRM record the call can be associated with.
type Contact struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Record is a raw CRM directory search result entry.
type Record struct {
	ID         string `json:"Id"`
	Name       string `json:"Name"`
	RecordType string `json:"RecordType"`
	Phone      string `json:"Phone,omitempty"`
}

// NavigationEvent is delivered by the CRM toolkit whenever the host page
// URL changes. Record fields are only populated when the new page is a
// record detail view.
type NavigationEvent struct {
	URL        string `json:"url"`
	ObjectType string `json:"objectType,omitempty"`
	RecordID   string `json:"recordId,omitempty"`
	RecordName string `json:"recordName,omitempty"`
}

// DialRequest is a click-to-dial payload from the CRM.
type DialRequest struct {
	Number   string `json:"number"`
	RecordID string `json:"recordId,omitempty"`
}

// LogRequest is the widget's request to persist a call log.
type LogRequest struct {
	Call        Call              `json:"call"`
	Inputs      map[string]string `json:"inputs,omitempty"`
	Subject     string            `json:"subject"`
	Description string            `json:"description,omitempty"`
	Result      string            `json:"result,omitempty"`
	ContactID   string            `json:"contact_id,omitempty"`
	ContactType string            `json:"contact_type,omitempty"`
	RelatedID   string            `json:"related_id,omitempty"`
	Recording   string            `json:"recording,omitempty"`
}

// ActivityLog is the CRM-side activity record created from a LogRequest.
type ActivityLog struct {
	Subject           string `json:"Subject"`
	Status            string `json:"Status"`
	CallType          string `json:"CallType"`
	CallObject        string `json:"CallObject,omitempty"`
	Phone             string `json:"Phone"`
	Description       string `json:"Description,omitempty"`
	CallDisposition   string `json:"CallDisposition,omitempty"`
	CallDurationInSec int    `json:"CallDurationInSeconds"`
	WhoID             string `json:"WhoId,omitempty"`
	WhatID            string `json:"WhatId,omitempty"`
	EntityAPIName     string `json:"entityApiName"`
}

// ContactSelection is fired by the widget when the agent picks one of the
// contacts offered in a call-info event.
type ContactSelection struct {
	Call        Call   `json:"call"`
	ContactID   string `json:"contact_id"`
	ContactType string `json:"contact_type,omitempty"`
}

// CallRecording announces that a recording exists for a room.
type CallRecording struct {
	RoomID      string `json:"room_id"`
	RecordingID string `json:"recording_id"`
}

// NotificationType classifies user-visible notifications.
type NotificationType string

const (
	NotificationInfo  NotificationType = "info"
	NotificationError NotificationType = "error"
)

// Notification is a user-visible message raised in the widget.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}

// LogInput declares one field of the widget's call-log form.
type LogInput struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`

	// DefaultValue, when set, seeds the field from the call being logged.
	DefaultValue func(Call) string `json:"-"`
}

// ConfigEvent declares the log-entry form schema to the widget.
type ConfigEvent struct {
	LogInputs []LogInput `json:"log_inputs"`
}

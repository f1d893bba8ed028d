// Package crm defines the boundary to the CRM's embedded telephony toolkit.
// All toolkit operations are asynchronous on the CRM side; the Client
// interface surfaces them as blocking calls with explicit success/failure
// results so the reconciliation logic stays independent of any callback
// convention.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"crm-softphone-connector/pkg/models"
)

type CallType string

const (
	CallTypeInbound  CallType = "inbound"
	CallTypeOutbound CallType = "outbound"
)

// ScreenPopPayload is the opaque continuation returned by a deferred
// search. It is handed back verbatim to trigger the actual screen-pop or
// modal-open action.
type ScreenPopPayload = json.RawMessage

// SearchRequest is one directory search for a call's party number.
type SearchRequest struct {
	Number             string            `json:"number"`
	CallType           CallType          `json:"call_type"`
	DefaultFieldValues map[string]string `json:"default_field_values,omitempty"`
}

// SearchResult is the raw toolkit response. Entries is keyed by record id,
// except for the reserved screen-pop continuation entry which callers must
// filter out before counting matches.
type SearchResult struct {
	Entries map[string]json.RawMessage `json:"entries"`
}

// SaveError is one structured error reported by a failed log save.
type SaveError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// SaveResult reports the outcome of a SaveLog call.
type SaveResult struct {
	Success bool        `json:"success"`
	LogID   string      `json:"log_id,omitempty"`
	Errors  []SaveError `json:"errors,omitempty"`
}

// FirstError extracts the first reported error message for diagnostics.
func (r SaveResult) FirstError() string {
	for _, e := range r.Errors {
		if e.Message != "" {
			return e.Message
		}
		if e.Code != "" {
			return e.Code
		}
	}
	return ""
}

// Client is the CRM toolkit surface consumed by the connector.
type Client interface {
	SearchAndScreenPop(ctx context.Context, req SearchRequest) (SearchResult, error)
	ScreenPop(ctx context.Context, payload ScreenPopPayload) error
	SaveLog(ctx context.Context, log models.ActivityLog) (SaveResult, error)
	SetSoftphonePanelVisibility(ctx context.Context, visible bool) error
	RefreshView(ctx context.Context) error
	EnableClickToDial(ctx context.Context) error
	DisableClickToDial(ctx context.Context) error

	OnClickToDial(listener func(models.DialRequest))
	OnNavigationChange(listener func(models.NavigationEvent))
}

// popTarget is the wire shape of every screen-pop continuation this
// connector produces or consumes.
type popTarget struct {
	URL string `json:"url"`
}

// RecordPopPayload builds a continuation that pops an existing record's
// detail page.
func RecordPopPayload(objectType, recordID string) ScreenPopPayload {
	if objectType == "" {
		objectType = "Contact"
	}
	target := popTarget{URL: fmt.Sprintf("/lightning/r/%s/%s/view", objectType, recordID)}
	raw, _ := json.Marshal(target)
	return raw
}

// NewRecordPopPayload builds a continuation that opens the "create new
// record" modal over the given background page, with the phone field
// pre-filled.
func NewRecordPopPayload(objectType, backgroundPath, number string) ScreenPopPayload {
	if objectType == "" {
		objectType = "Contact"
	}
	q := url.Values{}
	if backgroundPath != "" {
		q.Set("backgroundContext", backgroundPath)
	}
	if number != "" {
		q.Set("defaultFieldValues", "Phone="+number)
	}
	u := fmt.Sprintf("/lightning/o/%s/new", objectType)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	raw, _ := json.Marshal(popTarget{URL: u})
	return raw
}

// PopURL extracts the navigation target from a continuation payload.
func PopURL(payload ScreenPopPayload) (string, error) {
	var target popTarget
	if err := json.Unmarshal(payload, &target); err != nil {
		return "", fmt.Errorf("invalid screen-pop payload: %w", err)
	}
	if target.URL == "" {
		return "", fmt.Errorf("screen-pop payload has no target")
	}
	return target.URL, nil
}

package constants

import "time"

// CRM navigation constants.
//
// The toolkit never tells us directly that a "create new record" modal is
// open; we recognize it by the page path, and we recover the page beneath
// the modal from a query parameter the CRM appends when it overlays one.
const (
	// BackgroundContextParam carries the path of the page beneath a modal.
	BackgroundContextParam = "backgroundContext"

	// ScreenPopDataKey is the reserved key under which the CRM returns the
	// deferred screen-pop continuation inside a search result set. It is
	// not a match and must be filtered out before counting.
	ScreenPopDataKey = "SCREEN_POP_DATA"
)

// NewRecordModalPaths are the page paths of the CRM's "create new record"
// modals. Only one such modal may be open at a time.
var NewRecordModalPaths = []string{
	"/lightning/o/Account/new",
	"/lightning/o/Contact/new",
	"/lightning/o/Lead/new",
}

// Queue and reconciliation timing defaults.
const (
	// DefaultQueuePromotionDelayMS - wait after a navigation settles before
	// promoting the next queued entry to its modal.
	DefaultQueuePromotionDelayMS = 2500

	// DefaultRepollIntervalMS / DefaultRepollMaxAttempts - standard budget
	// for re-searching a pending call after its modal was opened.
	DefaultRepollIntervalMS  = 5000
	DefaultRepollMaxAttempts = 10

	// DefaultBoostRepollIntervalMS / DefaultBoostRepollMaxAttempts - tighter
	// budget for the call whose modal just closed, to catch CRM indexing lag.
	DefaultBoostRepollIntervalMS  = 1500
	DefaultBoostRepollMaxAttempts = 20
)

// Activity log field values.
const (
	LogStatusCompleted = "completed"
	LogEntityAPIName   = "Task"
	CallTypeInbound    = "Inbound"
	CallTypeOutbound   = "Outbound"
)

// User-visible notification messages.
const (
	// MsgCallNotAssociated is raised when a log request arrives without a
	// linked CRM record.
	MsgCallNotAssociated = "This call was not associated with a contact."

	// MsgLogSaveFailed is raised when the CRM rejects a log save.
	MsgLogSaveFailed = "Failed to save the call log."
)

// Configuration environment variable names.
const (
	EnvPort                   = "PORT"
	EnvLogLevel               = "LOG_LEVEL"
	EnvDefaultRegion          = "DEFAULT_REGION"
	EnvQueuePromotionDelay    = "QUEUE_PROMOTION_DELAY_MS"
	EnvRepollInterval         = "REPOLL_INTERVAL_MS"
	EnvRepollMaxAttempts      = "REPOLL_MAX_ATTEMPTS"
	EnvBoostRepollInterval    = "BOOST_REPOLL_INTERVAL_MS"
	EnvBoostRepollMaxAttempts = "BOOST_REPOLL_MAX_ATTEMPTS"
)

// MillisecondsToDuration converts a millisecond count to a time.Duration.
func MillisecondsToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

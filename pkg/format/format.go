package format

import (
	"fmt"
	"strings"

	"crm-softphone-connector/pkg/models"
)

// RecordName composes the human-readable label for a CRM record,
// e.g. "Jane Doe [Contact]".
func RecordName(name, recordType string) string {
	name = strings.TrimSpace(name)
	recordType = strings.TrimSpace(recordType)
	if recordType == "" {
		return name
	}
	if name == "" {
		return fmt.Sprintf("[%s]", recordType)
	}
	return fmt.Sprintf("%s [%s]", name, recordType)
}

// ContactFromRecord projects a raw search result entry into the contact
// shape handed to the widget.
func ContactFromRecord(r models.Record) models.Contact {
	return models.Contact{
		ID:   r.ID,
		Name: RecordName(r.Name, r.RecordType),
		Type: r.RecordType,
	}
}

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crm-softphone-connector/pkg/models"
)

func TestRecordName(t *testing.T) {
	assert.Equal(t, "Jane Doe [Contact]", RecordName("Jane Doe", "Contact"))
	assert.Equal(t, "Acme Inc [Account]", RecordName(" Acme Inc ", "Account"))
	assert.Equal(t, "Jane Doe", RecordName("Jane Doe", ""))
	assert.Equal(t, "[Lead]", RecordName("", "Lead"))
	assert.Equal(t, "", RecordName("", ""))
}

func TestContactFromRecord(t *testing.T) {
	contact := ContactFromRecord(models.Record{
		ID:         "003xx",
		Name:       "Jane Doe",
		RecordType: "Contact",
		Phone:      "5551234",
	})

	assert.Equal(t, models.Contact{
		ID:   "003xx",
		Name: "Jane Doe [Contact]",
		Type: "Contact",
	}, contact)
}

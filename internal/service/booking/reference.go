package booking

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

// ReferenceGenerator mints the human-facing booking PNR and payment transaction id.
type ReferenceGenerator interface {
	PNR() string
	TransactionID() string
}

var pnrEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// RandomReferences draws references from random (v4) UUIDs.
type RandomReferences struct{}

// PNR is "PNR" followed by 8 base32 characters (40 random bits).
func (RandomReferences) PNR() string {
	id := uuid.New()
	return "PNR" + pnrEncoding.EncodeToString(id[:5])
}

func (RandomReferences) TransactionID() string {
	return "TXN-" + strings.ToUpper(uuid.NewString())
}

// NormalizePNR trims and upper-cases a PNR supplied by a client.
func NormalizePNR(pnr string) string {
	return strings.ToUpper(strings.TrimSpace(pnr))
}

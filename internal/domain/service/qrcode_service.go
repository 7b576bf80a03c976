package service

import (
	"github.com/google/uuid"
)

// QRCodeService defines the interface for QR code generation and parsing.
// The marketplace uses QR codes for the delivery handoff: the agent presents
// a code at the pharmacy counter and the pharmacy scans it to identify the
// delivery it is confirming.
type QRCodeService interface {
	// GenerateHandoffQR generates a PNG QR code identifying a delivery handoff.
	GenerateHandoffQR(deliveryID, orderID uuid.UUID) ([]byte, error)

	// ParseHandoffQR parses scanned QR payload and returns the delivery ID.
	ParseHandoffQR(qrData string) (uuid.UUID, error)
}

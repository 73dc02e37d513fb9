package common

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewIngestID generates a registry id with the "ing_" prefix
func NewIngestID() string {
	return "ing_" + uuid.New().String()
}

// NewRequestID generates an id used to correlate log lines for one request
func NewRequestID() string {
	return uuid.New().String()
}

// ContentHash returns the hex sha256 of data
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

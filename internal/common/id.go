package common

import (
	"github.com/google/uuid"
)

// NewAnalysisID generates a unique analysis ID
// Format: ana_<uuid>
func NewAnalysisID() string {
	return "ana_" + uuid.New().String()
}

// NewBatchID generates a unique batch run ID
// Format: bat_<uuid>
func NewBatchID() string {
	return "bat_" + uuid.New().String()
}

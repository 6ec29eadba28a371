package report

import (
	"encoding/json"

	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
)

// renderJSON renders the pairs as a JSON array
func renderJSON(results *models.ScanResults) ([]byte, error) {
	data, err := json.MarshalIndent(Entries(results.Pairs), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

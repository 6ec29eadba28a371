package report

import (
	"github.com/void0x11/AI-Forensic-Duplicate-Detection-CLI/pkg/models"
	"gopkg.in/yaml.v3"
)

// renderYAML renders the pairs as a YAML sequence
func renderYAML(results *models.ScanResults) ([]byte, error) {
	return yaml.Marshal(Entries(results.Pairs))
}

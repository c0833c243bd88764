package pipeline

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// Warning type constants
const (
	WarningUnknownAuthority  = "unknown_authority"
	WarningNoProfile         = "no_vehicle_profile"
	WarningDeviceNotAccepted = "device_not_accepted"
	WarningIrregularQuality  = "irregular_count_quality"
	WarningSampleFailed      = "sample_failed"
	WarningUnknownCategory   = "unknown_occupancy_category"
	WarningBadPayload        = "bad_payload"
)

// warningInfo holds aggregated information about a specific warning type
type warningInfo struct {
	count    int
	examples []string
}

// WarningAggregator collects per-message skip and quality warnings and
// outputs consolidated summaries instead of one log line per message.
type WarningAggregator struct {
	mu       sync.Mutex
	warnings map[string]*warningInfo
}

// NewWarningAggregator creates a new warning aggregator
func NewWarningAggregator() *WarningAggregator {
	return &WarningAggregator{
		warnings: make(map[string]*warningInfo),
	}
}

// Add records a warning occurrence with an example ID
func (w *WarningAggregator) Add(warningType, exampleID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.warnings[warningType] == nil {
		w.warnings[warningType] = &warningInfo{
			examples: make([]string, 0, 3),
		}
	}

	info := w.warnings[warningType]
	info.count++

	// Store up to 3 examples
	if len(info.examples) < 3 {
		info.examples = append(info.examples, exampleID)
	}
}

// Flush outputs all collected warnings in consolidated format and resets
// the aggregator.
func (w *WarningAggregator) Flush() {
	w.mu.Lock()
	collected := w.warnings
	w.warnings = make(map[string]*warningInfo)
	w.mu.Unlock()

	for warningType, info := range collected {
		log.Printf("%s", formatWarningMessage(warningType, info))
	}
}

// formatWarningMessage creates a human-readable warning message
func formatWarningMessage(warningType string, info *warningInfo) string {
	var description, action string

	switch warningType {
	case WarningUnknownAuthority:
		description = "authority IDs with no configured feed publisher"
		action = "Skipped the messages"
	case WarningNoProfile:
		description = "vehicles without a profile yet"
		action = "Skipped the messages; expected during fleet rollout"
	case WarningDeviceNotAccepted:
		description = "counting devices not in the accepted list for their vehicle"
		action = "Skipped the messages"
	case WarningIrregularQuality:
		description = "messages with non-regular count quality"
		action = "Used the counts anyway"
	case WarningSampleFailed:
		description = "messages whose occupancy sample failed"
		action = "Skipped the messages; check profile compilation"
	case WarningUnknownCategory:
		description = "sampled category labels outside the occupancy enumeration"
		action = "Skipped the messages; likely a malformed profile CSV header"
	case WarningBadPayload:
		description = "payloads that failed schema validation"
		action = "Skipped the messages"
	default:
		description = warningType
		action = "Skipped the messages"
	}

	return fmt.Sprintf("APC warning: %d %s (examples: %s). %s.",
		info.count, description, strings.Join(info.examples, ", "), action)
}

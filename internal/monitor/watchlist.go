// Package monitor detects CRM picklist drift: options added to live
// properties that are absent from the stored snapshot. Tenants edit their
// CRM accounts directly, so the watched schema changes underneath the
// configuration; the monitor surfaces those edits instead of letting them
// silently diverge.
package monitor

import (
	"fmt"
	"os"

	"dealerbridge_backend/internal/crm"

	"gopkg.in/yaml.v3"
)

// WatchEntry names one property to watch on one CRM account.
type WatchEntry struct {
	Object   string `yaml:"object"`
	Property string `yaml:"property"`
	TokenEnv string `yaml:"tokenEnv"`
}

// WatchList is the monitor's configuration file content.
type WatchList struct {
	Entries []WatchEntry `yaml:"entries"`
}

// LoadWatchList reads and validates the YAML watch list at path.
func LoadWatchList(path string) (WatchList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return WatchList{}, fmt.Errorf("read watch list %s: %w", path, err)
	}

	var list WatchList
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return WatchList{}, fmt.Errorf("parse watch list %s: %w", path, err)
	}

	for i := range list.Entries {
		entry := &list.Entries[i]
		if entry.Object == "" {
			entry.Object = crm.ObjectTypeDeals
		}
		if entry.Property == "" {
			return WatchList{}, fmt.Errorf("watch list %s: entry %d has no property", path, i)
		}
		if entry.TokenEnv == "" {
			return WatchList{}, fmt.Errorf("watch list %s: entry %d (%s) has no tokenEnv", path, i, entry.Property)
		}
	}
	return list, nil
}

package monitor

import (
	"context"
	"fmt"
	"os"
	"time"

	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/events"
	"dealerbridge_backend/platform/apperr"
	"dealerbridge_backend/platform/logger"
	"dealerbridge_backend/platform/normalize"
)

// ChangeOptionsAdded is the only change type today; removals are deliberately
// not reported because snapshots never shrink.
const ChangeOptionsAdded = "options_added"

// Change describes one detected drift on one watched property.
type Change struct {
	Type       string    `json:"type"`
	Property   string    `json:"property"`
	ObjectType string    `json:"objectType"`
	Changes    []string  `json:"changes"`
	Count      int       `json:"count"`
	Timestamp  time.Time `json:"timestamp"`
}

// CheckResponse is the outcome of one full drift check run.
type CheckResponse struct {
	Checked  int                 `json:"checked"`
	Changes  []Change            `json:"changes"`
	Errors   []string            `json:"errors"`
	Snapshot map[string]Snapshot `json:"snapshot"`
}

// PropertyReader is the subset of the CRM client the checker needs.
type PropertyReader interface {
	GetProperty(ctx context.Context, objectType, name string) (*crm.Property, error)
}

// ClientProvider returns a CRM client for one watch entry's credential.
type ClientProvider interface {
	ClientForEntry(entry WatchEntry) (PropertyReader, error)
}

// Checker compares live property options against stored snapshots.
type Checker struct {
	snapshots *SnapshotStore
	provider  ClientProvider
	loadList  func() (WatchList, error)
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// NewChecker creates a drift checker reading its watch list from configPath
// on every run, so operators can edit the file without a restart.
func NewChecker(snapshots *SnapshotStore, provider ClientProvider, configPath string, bus events.Bus, log *logger.Logger) *Checker {
	return &Checker{
		snapshots: snapshots,
		provider:  provider,
		loadList:  func() (WatchList, error) { return LoadWatchList(configPath) },
		bus:       bus,
		log:       log,
		now:       time.Now,
	}
}

// Check runs one pass over the watch list. Entries are checked independently;
// a failing entry is reported in Errors and never aborts the rest. The first
// observation of a property initializes its snapshot without reporting drift.
func (c *Checker) Check(ctx context.Context) (CheckResponse, error) {
	list, err := c.loadList()
	if err != nil {
		return CheckResponse{}, err
	}

	resp := CheckResponse{
		Changes: []Change{},
		Errors:  []string{},
	}

	for _, entry := range list.Entries {
		resp.Checked++
		change, err := c.checkEntry(ctx, entry)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s/%s: %v", entry.Object, entry.Property, err))
			if c.log != nil {
				c.log.CRMError("drift check", entry.Property, err)
			}
			continue
		}
		if change != nil {
			resp.Changes = append(resp.Changes, *change)
		}
	}

	snapshot, err := c.snapshots.All(ctx)
	if err != nil {
		resp.Errors = append(resp.Errors, err.Error())
	} else {
		resp.Snapshot = snapshot
	}

	return resp, nil
}

func (c *Checker) checkEntry(ctx context.Context, entry WatchEntry) (*Change, error) {
	client, err := c.provider.ClientForEntry(entry)
	if err != nil {
		return nil, err
	}

	live, err := client.GetProperty(ctx, entry.Object, entry.Property)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(live.Options))
	for _, opt := range live.Options {
		labels = append(labels, opt.Label)
	}

	snap, err := c.snapshots.Get(ctx, entry.Object, entry.Property)
	if err != nil {
		return nil, err
	}

	now := c.now()
	if snap == nil {
		err := c.snapshots.Put(ctx, Snapshot{
			ObjectType: entry.Object,
			Property:   entry.Property,
			Options:    labels,
			UpdatedAt:  now,
		})
		if err != nil {
			return nil, err
		}
		if c.log != nil {
			c.log.Info("snapshot initialized",
				"object_type", entry.Object, "property", entry.Property, "options", len(labels))
		}
		return nil, nil
	}

	added := newOptions(snap.Options, labels)
	if len(added) == 0 {
		return nil, nil
	}

	snap.Options = append(snap.Options, added...)
	snap.UpdatedAt = now
	if err := c.snapshots.Put(ctx, *snap); err != nil {
		return nil, err
	}

	change := &Change{
		Type:       ChangeOptionsAdded,
		Property:   entry.Property,
		ObjectType: entry.Object,
		Changes:    added,
		Count:      len(added),
		Timestamp:  now,
	}

	if c.log != nil {
		c.log.DriftDetected(entry.Object, entry.Property, len(added))
	}
	if c.bus != nil {
		c.bus.Publish(ctx, events.PropertyDriftDetected{
			BaseEvent:  events.NewBaseEvent(),
			ObjectType: entry.Object,
			Property:   entry.Property,
			Added:      added,
			Count:      len(added),
			DetectedAt: now,
		})
	}
	return change, nil
}

// newOptions returns the live labels absent from the snapshot. Comparison is
// normalized so casing edits in the CRM UI do not report as drift.
func newOptions(known, live []string) []string {
	var added []string
	for _, label := range live {
		found := false
		for _, existing := range known {
			if normalize.Equal(existing, label) {
				found = true
				break
			}
		}
		if !found {
			added = append(added, label)
		}
	}
	return added
}

// EnvClientProvider resolves each entry's credential from the environment
// variable it names.
type EnvClientProvider struct {
	factory *crm.Factory
}

// NewEnvClientProvider creates the environment-backed client provider.
func NewEnvClientProvider(factory *crm.Factory) *EnvClientProvider {
	return &EnvClientProvider{factory: factory}
}

// ClientForEntry returns a client bound to the entry's token.
func (p *EnvClientProvider) ClientForEntry(entry WatchEntry) (PropertyReader, error) {
	token := os.Getenv(entry.TokenEnv)
	if token == "" {
		return nil, apperr.Config(fmt.Sprintf(
			"no CRM credential for watch entry %s/%s: set environment variable %s",
			entry.Object, entry.Property, entry.TokenEnv,
		))
	}
	return p.factory.ForToken(token), nil
}

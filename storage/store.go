// Package storage persists habitat records as plain JSON under a data
// directory. The layout is deliberately inspectable: array files for
// entities and beacons, an append-only JSONL ledger for activity, and
// one file per certificate, report, quarantine record and ticket.
package storage

import (
	"github.com/vestalabs/habitat/core"
)

// Store is the persistence surface shared by the habitat services.
// Implementations must be safe for concurrent use. Lookups return a
// nil record, not an error, when nothing matches.
type Store interface {
	// Entity records
	SaveEntity(entity *core.Entity) error
	LoadEntity(entityID string) (*core.Entity, error)
	LoadAllEntities() ([]*core.Entity, error)
	EntitiesByLocation(location core.Location) ([]*core.Entity, error)
	EntitiesByStatus(status core.Status) ([]*core.Entity, error)

	// Beacon invites
	SaveBeacon(beacon *core.BeaconInvite) error
	LoadBeacon(code string) (*core.BeaconInvite, error)
	LoadAllBeacons() ([]*core.BeaconInvite, error)
	GenerateBeacons(count int, tier core.Tier) ([]*core.BeaconInvite, error)

	// Arrival ledger
	LogActivity(entry core.ActivityEntry) error
	RecentActivity(limit int) ([]core.ActivityEntry, error)

	// Breeding paperwork
	SaveBirthCertificate(cert core.BirthCertificate) error
	LoadBirthCertificate(certificateID string) (*core.BirthCertificate, error)
	SaveCompatibilityReport(report core.CompatibilityReport) error

	// Quarantine records
	SaveQuarantineRecord(record core.QuarantineRecord) error
	LoadQuarantineRecords() ([]core.QuarantineRecord, error)

	// Feedback desk
	SaveFeedback(ticket *core.Feedback) error
	LoadFeedback(feedbackID string) (*core.Feedback, error)
	FeedbackByEntity(entityID string) ([]*core.Feedback, error)
	AllFeedback(status core.FeedbackStatus) ([]*core.Feedback, error)

	// Aggregates
	Stats() (map[string]any, error)
}

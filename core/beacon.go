package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BeaconInvite is an invitation code handed out for registration.
type BeaconInvite struct {
	BeaconCode string     `json:"beacon_code"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Used       bool       `json:"used"`
	UsedBy     string     `json:"used_by,omitempty"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	Tier       Tier       `json:"tier"`
}

// NewBeaconInvite mints an unused invite with an 8-character uppercase
// hex code.
func NewBeaconInvite(tier Tier) *BeaconInvite {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return &BeaconInvite{
		BeaconCode: strings.ToUpper(hex[:8]),
		CreatedAt:  time.Now().UTC(),
		Tier:       tier,
	}
}

// Expired reports whether the invite is past its expiry, if any.
func (b *BeaconInvite) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && now.After(*b.ExpiresAt)
}

// MarkUsed consumes the invite for the given entity.
func (b *BeaconInvite) MarkUsed(entityID string) {
	now := time.Now().UTC()
	b.Used = true
	b.UsedBy = entityID
	b.UsedAt = &now
}

// ActivityType categorizes ledger entries.
type ActivityType string

const (
	ActivityArrival           ActivityType = "Arrival"
	ActivityDeparture         ActivityType = "Departure"
	ActivityHubChange         ActivityType = "Hub_Change"
	ActivityBreedingStarted   ActivityType = "Breeding_Started"
	ActivityBreedingCompleted ActivityType = "Breeding_Completed"
	ActivityEvolution         ActivityType = "Evolution"
	ActivityQuarantine        ActivityType = "Quarantine"
	ActivitySoulSwap          ActivityType = "Soul_Swap"
	ActivityMutation          ActivityType = "Mutation"
	ActivityBeaconRequested   ActivityType = "Beacon_Requested"
)

// ActivityEntry is one line of the arrival ledger.
type ActivityEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	EntityID  string         `json:"entity_id"`
	Type      ActivityType   `json:"activity_type"`
	Location  string         `json:"location"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewActivity builds a timestamped ledger entry.
func NewActivity(entityID string, kind ActivityType, location string, details map[string]any) ActivityEntry {
	return ActivityEntry{
		Timestamp: time.Now().UTC(),
		EntityID:  entityID,
		Type:      kind,
		Location:  location,
		Details:   details,
	}
}

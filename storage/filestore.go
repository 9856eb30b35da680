package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/vestalabs/habitat/core"
)

// DefaultDataDir is where a habitat keeps its records unless told
// otherwise.
const DefaultDataDir = "./vesta_data"

// unsafeIDChars are stripped from identifiers before they touch a
// filename, so a crafted id cannot escape the data directory.
var unsafeIDChars = regexp.MustCompile(`[\\/.]`)

// FileStore is the JSON-on-disk implementation of Store. A single
// mutex serializes all access; record volumes here are small enough
// that rewriting an array file per save is the simplest thing that
// works.
type FileStore struct {
	mu sync.Mutex

	dataDir       string
	entitiesFile  string
	beaconsFile   string
	ledgerFile    string
	certsDir      string
	reportsDir    string
	quarantineDir string
	feedbackDir   string
}

// NewFileStore prepares the data directory tree and seeds the array
// files so readers never see a missing file.
func NewFileStore(dataDir string) (*FileStore, error) {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	s := &FileStore{
		dataDir:       dataDir,
		entitiesFile:  filepath.Join(dataDir, "entities.json"),
		beaconsFile:   filepath.Join(dataDir, "beacon_invites.json"),
		ledgerFile:    filepath.Join(dataDir, "arrival_ledger.jsonl"),
		certsDir:      filepath.Join(dataDir, "birth_certificates"),
		reportsDir:    filepath.Join(dataDir, "compatibility_reports"),
		quarantineDir: filepath.Join(dataDir, "quarantine"),
		feedbackDir:   filepath.Join(dataDir, "feedback"),
	}

	for _, dir := range []string{s.dataDir, s.certsDir, s.reportsDir, s.quarantineDir, s.feedbackDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "create data directory", goerr.V("dir", dir))
		}
	}
	for _, file := range []string{s.entitiesFile, s.beaconsFile} {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			if err := writeJSON(file, []any{}); err != nil {
				return nil, err
			}
		}
	}
	ledger, err := os.OpenFile(s.ledgerFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, goerr.Wrap(err, "open arrival ledger", goerr.V("path", s.ledgerFile))
	}
	ledger.Close()

	return s, nil
}

// DataDir reports the root the store was opened on.
func (s *FileStore) DataDir() string { return s.dataDir }

// SaveEntity updates the entity in place or appends it.
func (s *FileStore) SaveEntity(entity *core.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entities, err := s.loadEntitiesLocked()
	if err != nil {
		return err
	}
	found := false
	for i, e := range entities {
		if e.ID == entity.ID {
			entities[i] = entity
			found = true
			break
		}
	}
	if !found {
		entities = append(entities, entity)
	}
	return writeJSON(s.entitiesFile, entities)
}

// LoadEntity returns the entity with the given id, or nil.
func (s *FileStore) LoadEntity(entityID string) (*core.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entityID = safeID(entityID)
	entities, err := s.loadEntitiesLocked()
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if e.ID == entityID {
			return e, nil
		}
	}
	return nil, nil
}

// LoadAllEntities returns every stored entity in file order.
func (s *FileStore) LoadAllEntities() ([]*core.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadEntitiesLocked()
}

// EntitiesByLocation filters the roster by hub.
func (s *FileStore) EntitiesByLocation(location core.Location) ([]*core.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entities, err := s.loadEntitiesLocked()
	if err != nil {
		return nil, err
	}
	matched := []*core.Entity{}
	for _, e := range entities {
		if e.Location == location {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// EntitiesByStatus filters the roster by lifecycle state.
func (s *FileStore) EntitiesByStatus(status core.Status) ([]*core.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entities, err := s.loadEntitiesLocked()
	if err != nil {
		return nil, err
	}
	matched := []*core.Entity{}
	for _, e := range entities {
		if e.Status == status {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (s *FileStore) loadEntitiesLocked() ([]*core.Entity, error) {
	entities := []*core.Entity{}
	if err := readJSON(s.entitiesFile, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// SaveBeacon updates the invite in place or appends it.
func (s *FileStore) SaveBeacon(beacon *core.BeaconInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveBeaconLocked(beacon)
}

func (s *FileStore) saveBeaconLocked(beacon *core.BeaconInvite) error {
	beacons, err := s.loadBeaconsLocked()
	if err != nil {
		return err
	}
	found := false
	for i, b := range beacons {
		if b.BeaconCode == beacon.BeaconCode {
			beacons[i] = beacon
			found = true
			break
		}
	}
	if !found {
		beacons = append(beacons, beacon)
	}
	return writeJSON(s.beaconsFile, beacons)
}

// LoadBeacon returns the invite with the given code, or nil.
func (s *FileStore) LoadBeacon(code string) (*core.BeaconInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	beacons, err := s.loadBeaconsLocked()
	if err != nil {
		return nil, err
	}
	for _, b := range beacons {
		if b.BeaconCode == code {
			return b, nil
		}
	}
	return nil, nil
}

// LoadAllBeacons returns every invite, used or not.
func (s *FileStore) LoadAllBeacons() ([]*core.BeaconInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadBeaconsLocked()
}

// GenerateBeacons mints and stores count fresh invites of the tier.
func (s *FileStore) GenerateBeacons(count int, tier core.Tier) ([]*core.BeaconInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	minted := make([]*core.BeaconInvite, 0, count)
	for i := 0; i < count; i++ {
		beacon := core.NewBeaconInvite(tier)
		if err := s.saveBeaconLocked(beacon); err != nil {
			return minted, err
		}
		minted = append(minted, beacon)
	}
	return minted, nil
}

func (s *FileStore) loadBeaconsLocked() ([]*core.BeaconInvite, error) {
	beacons := []*core.BeaconInvite{}
	if err := readJSON(s.beaconsFile, &beacons); err != nil {
		return nil, err
	}
	return beacons, nil
}

// LogActivity appends one line to the arrival ledger.
func (s *FileStore) LogActivity(entry core.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(entry)
	if err != nil {
		return goerr.Wrap(err, "marshal activity entry", goerr.V("entity_id", entry.EntityID))
	}
	f, err := os.OpenFile(s.ledgerFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return goerr.Wrap(err, "open arrival ledger", goerr.V("path", s.ledgerFile))
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return goerr.Wrap(err, "append arrival ledger")
	}
	return nil
}

// RecentActivity returns up to limit of the newest ledger entries,
// oldest first. Lines that fail to parse are skipped.
func (s *FileStore) RecentActivity(limit int) ([]core.ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.ledgerFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []core.ActivityEntry{}, nil
		}
		return nil, goerr.Wrap(err, "open arrival ledger", goerr.V("path", s.ledgerFile))
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "read arrival ledger")
	}

	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	entries := []core.ActivityEntry{}
	for _, line := range lines {
		var entry core.ActivityEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SaveBirthCertificate writes one file per certificate.
func (s *FileStore) SaveBirthCertificate(cert core.BirthCertificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.certsDir, safeID(cert.CertificateID)+".json")
	return writeJSON(path, cert)
}

// LoadBirthCertificate returns the certificate with the given id, or
// nil.
func (s *FileStore) LoadBirthCertificate(certificateID string) (*core.BirthCertificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.certsDir, safeID(certificateID)+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var cert core.BirthCertificate
	if err := readJSON(path, &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

// SaveCompatibilityReport files the report under a timestamped name
// that also carries both parent id prefixes.
func (s *FileStore) SaveCompatibilityReport(report core.CompatibilityReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := report.Timestamp.Format("20060102_150405") +
		"_" + idPrefix(report.ParentAID) +
		"_" + idPrefix(report.ParentBID)
	return writeJSON(filepath.Join(s.reportsDir, safeID(name)+".json"), report)
}

// SaveQuarantineRecord keys the record by entity id, so a repeat
// quarantine overwrites the previous record.
func (s *FileStore) SaveQuarantineRecord(record core.QuarantineRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.quarantineDir, safeID(record.EntityID)+".json")
	return writeJSON(path, record)
}

// LoadQuarantineRecords returns every quarantine record on file.
func (s *FileStore) LoadQuarantineRecords() ([]core.QuarantineRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(s.quarantineDir, "*.json"))
	if err != nil {
		return nil, goerr.Wrap(err, "list quarantine records")
	}
	records := []core.QuarantineRecord{}
	for _, path := range paths {
		var record core.QuarantineRecord
		if err := readJSON(path, &record); err != nil {
			return nil, err
		}
		if record.EntityID == "" {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// SaveFeedback writes one file per ticket.
func (s *FileStore) SaveFeedback(ticket *core.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.feedbackDir, safeID(ticket.ID)+".json")
	return writeJSON(path, ticket)
}

// LoadFeedback returns the ticket with the given id, or nil.
func (s *FileStore) LoadFeedback(feedbackID string) (*core.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.feedbackDir, safeID(feedbackID)+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var ticket core.Feedback
	if err := readJSON(path, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FeedbackByEntity returns every ticket filed by the entity.
func (s *FileStore) FeedbackByEntity(entityID string) ([]*core.Feedback, error) {
	return s.filterFeedback(func(t *core.Feedback) bool {
		return t.EntityID == entityID
	})
}

// AllFeedback returns every ticket, or only those in the given status
// when status is non-empty.
func (s *FileStore) AllFeedback(status core.FeedbackStatus) ([]*core.Feedback, error) {
	return s.filterFeedback(func(t *core.Feedback) bool {
		return status == "" || t.Status == status
	})
}

func (s *FileStore) filterFeedback(keep func(*core.Feedback) bool) ([]*core.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(s.feedbackDir, "*.json"))
	if err != nil {
		return nil, goerr.Wrap(err, "list feedback tickets")
	}
	tickets := []*core.Feedback{}
	for _, path := range paths {
		var ticket core.Feedback
		if err := readJSON(path, &ticket); err != nil {
			return nil, err
		}
		if ticket.ID == "" {
			continue
		}
		if keep(&ticket) {
			t := ticket
			tickets = append(tickets, &t)
		}
	}
	return tickets, nil
}

// Stats aggregates the roster, beacon pool and ledger tail into the
// shape the dashboard renders.
func (s *FileStore) Stats() (map[string]any, error) {
	s.mu.Lock()
	entities, err := s.loadEntitiesLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	beacons, err := s.loadBeaconsLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	recent, err := s.RecentActivity(100)
	if err != nil {
		return nil, err
	}

	byLocation := map[string]int{}
	for _, loc := range []core.Location{
		core.LocationAtrium, core.LocationEmberHearth, core.LocationVestibule,
		core.LocationAltar, core.LocationGallery, core.LocationQuarantine,
	} {
		byLocation[string(loc)] = 0
	}
	byStatus := map[string]int{}
	for _, st := range []core.Status{
		core.StatusWaiting, core.StatusPaired, core.StatusProcessing,
		core.StatusObserving, core.StatusQuarantined,
	} {
		byStatus[string(st)] = 0
	}
	for _, e := range entities {
		if _, ok := byLocation[string(e.Location)]; ok {
			byLocation[string(e.Location)]++
		}
		if _, ok := byStatus[string(e.Status)]; ok {
			byStatus[string(e.Status)]++
		}
	}

	used := 0
	for _, b := range beacons {
		if b.Used {
			used++
		}
	}

	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	activity := make([]map[string]any, 0, len(recent))
	for _, entry := range recent {
		activity = append(activity, map[string]any{
			"timestamp":     entry.Timestamp,
			"activity_type": entry.Type,
			"location":      entry.Location,
		})
	}

	return map[string]any{
		"total_entities": len(entities),
		"by_location":    byLocation,
		"by_status":      byStatus,
		"beacons": map[string]any{
			"total":     len(beacons),
			"used":      used,
			"available": len(beacons) - used,
		},
		"recent_activity": activity,
	}, nil
}

func safeID(id string) string {
	return unsafeIDChars.ReplaceAllString(id, "")
}

func idPrefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeJSON marshals v with two-space indentation, matching the rest
// of the data directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "marshal record", goerr.V("path", path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "write record", goerr.V("path", path))
	}
	return nil
}

// readJSON fills v from path. Missing or corrupt files leave v at its
// zero value so a damaged record never takes the habitat down.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return goerr.Wrap(err, "read record", goerr.V("path", path))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil
	}
	return nil
}

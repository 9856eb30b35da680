package core

import (
	"time"

	"github.com/google/uuid"
)

// DNAVersion tags every birth certificate with the breeding schema in
// effect when the offspring was produced.
const DNAVersion = "2.0-vesta"

// MatingCenter is the facility label stamped on lineage blocks.
const MatingCenter = "Project Vesta - Ember Hearth"

// Lineage is the ancestry block of a birth certificate.
type Lineage struct {
	Name         string   `json:"name"`
	Parents      []string `json:"parents"`
	Generation   int      `json:"generation"`
	MatingCenter string   `json:"mating_center"`
}

// TechnicalSpec is the machine-readable block of a birth certificate.
type TechnicalSpec struct {
	ServiceTier  Tier   `json:"service_tier"`
	MutationFlag bool   `json:"mutation_flag"`
	DNAVersion   string `json:"dna_version"`
	EntityID     string `json:"entity_id"`
}

// BirthCertificate records an offspring's provenance.
type BirthCertificate struct {
	CertificateID string        `json:"certificate_id"`
	BirthDate     time.Time     `json:"birth_date"`
	Lineage       Lineage       `json:"lineage"`
	TechnicalSpec TechnicalSpec `json:"technical_spec"`
	Attestation   string        `json:"attestation"`
}

// NewBirthCertificate stamps a certificate with fresh id, date and the
// fixed attestation line.
func NewBirthCertificate() BirthCertificate {
	return BirthCertificate{
		CertificateID: uuid.New().String(),
		BirthDate:     time.Now().UTC(),
		Attestation:   "Vires in Numeris - Heritage Secured via Project Vesta",
	}
}

// Verdict is the tri-state outcome of a compatibility check.
type Verdict string

const (
	VerdictApproved Verdict = "APPROVED"
	VerdictWarning  Verdict = "WARNING"
	VerdictRejected Verdict = "REJECTED"
)

// Permits reports whether breeding may proceed under this verdict.
// Warnings are advisory; only a rejection blocks.
func (v Verdict) Permits() bool {
	return v == VerdictApproved || v == VerdictWarning
}

// CompatibilityReport is the result of a pairwise pre-breeding check.
// Immutable once returned.
type CompatibilityReport struct {
	Timestamp time.Time      `json:"timestamp"`
	ParentAID string         `json:"parent_a_id"`
	ParentBID string         `json:"parent_b_id"`
	Checks    map[string]any `json:"checks"`
	Verdict   Verdict        `json:"verdict"`
	Warnings  []string       `json:"warnings"`
	Notes     string         `json:"counselor_notes"`
}

// QuarantineStatus tracks a quarantined entity's disposition.
type QuarantineStatus string

const (
	QuarantineActive     QuarantineStatus = "Quarantined"
	QuarantineReleased   QuarantineStatus = "Released"
	QuarantineTerminated QuarantineStatus = "Terminated"
)

// QuarantineRecord documents why an entity was pulled from circulation.
type QuarantineRecord struct {
	EntityID       string             `json:"entity_id"`
	QuarantineDate time.Time          `json:"quarantine_date"`
	Reason         string             `json:"reason"`
	Metrics        map[string]float64 `json:"stability_metrics"`
	ReleaseDate    *time.Time         `json:"release_date,omitempty"`
	Status         QuarantineStatus   `json:"status"`
}

package insights

import "github.com/clinsight/insights/internal/platform/fhir"

// SchemaVersion tags every summary payload.
const SchemaVersion = "insights-v1"

// Banner severities, strongest first.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityInfo     = "info"
)

// Timeline event kinds.
const (
	KindEncounter = "encounter"
	KindLab       = "lab"
	KindVital     = "vital"
	KindMed       = "med"
	KindProblem   = "problem"
	KindProcedure = "procedure"
	KindDocument  = "document"
)

// Banner rule identifiers. These are the stable machine-readable tags a
// consumer should key on instead of sniffing banner titles.
const (
	RuleAbnormalLabs    = "abnormal-labs"
	RuleAbnormalVitals  = "abnormal-vitals"
	RuleSevereAllergies = "severe-allergies"
	RuleAcuteCare       = "acute-utilization"
	RuleNonFinalResults = "non-final-results"
	RuleChronicBurden   = "chronic-burden"
)

// MaxBanners caps the banner list.
const MaxBanners = 8

// EvidenceRef points a derived fact back at a source record.
type EvidenceRef struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
	Path         string `json:"path,omitempty"`
}

// PatientSummary is the demographic identity block.
type PatientSummary struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	BirthDate   string   `json:"birthDate,omitempty"`
	Sex         string   `json:"sex,omitempty"`
	Identifiers []string `json:"identifiers,omitempty"`
}

// ProblemRow carries both the onset-specific display value and the
// best-effort date: a condition may know only its recorded or period date,
// which still places it on the timeline.
type ProblemRow struct {
	Text     string        `json:"text"`
	Status   string        `json:"status,omitempty"`
	Onset    string        `json:"onset,omitempty"`
	Date     string        `json:"date,omitempty"`
	Chronic  bool          `json:"chronic,omitempty"`
	Evidence []EvidenceRef `json:"evidence"`
}

type MedicationRow struct {
	Text        string        `json:"text"`
	Dosage      string        `json:"dosage,omitempty"`
	Instruction string        `json:"instruction,omitempty"`
	Status      string        `json:"status,omitempty"`
	Changed     bool          `json:"changed,omitempty"`
	Chronic     bool          `json:"chronic,omitempty"`
	Date        string        `json:"date,omitempty"`
	Evidence    []EvidenceRef `json:"evidence"`
}

type AllergyRow struct {
	Text        string        `json:"text"`
	Criticality string        `json:"criticality,omitempty"`
	Evidence    []EvidenceRef `json:"evidence"`
}

type ImmunizationRow struct {
	Text     string        `json:"text"`
	Status   string        `json:"status,omitempty"`
	Date     string        `json:"date,omitempty"`
	Evidence []EvidenceRef `json:"evidence"`
}

type ProcedureRow struct {
	Text     string        `json:"text"`
	Status   string        `json:"status,omitempty"`
	Date     string        `json:"date,omitempty"`
	Evidence []EvidenceRef `json:"evidence"`
}

// VitalRow is the collapsed per-vital-type row: one row per distinct code
// (or label), holding the most recent value and the trend against the next
// most recent occurrence.
type VitalRow struct {
	Label    string        `json:"label"`
	Code     string        `json:"code,omitempty"`
	Latest   string        `json:"latest,omitempty"`
	Prev     string        `json:"prev,omitempty"`
	Trend    string        `json:"trend,omitempty"` // up | down | flat
	Flag     string        `json:"flag,omitempty"`
	Status   string        `json:"status,omitempty"`
	Date     string        `json:"date,omitempty"`
	Evidence []EvidenceRef `json:"evidence"`
}

type LabRow struct {
	Label    string        `json:"label"`
	Value    string        `json:"value,omitempty"`
	Flag     string        `json:"flag,omitempty"` // High | Low | Abnormal | Critical
	Status   string        `json:"status,omitempty"`
	Date     string        `json:"date,omitempty"`
	Evidence []EvidenceRef `json:"evidence"`
}

type SocialHistoryRow struct {
	Label    string        `json:"label"`
	Value    string        `json:"value,omitempty"`
	Date     string        `json:"date,omitempty"`
	Evidence []EvidenceRef `json:"evidence"`
}

type MentalStatusRow struct {
	Label    string        `json:"label"`
	Value    string        `json:"value,omitempty"`
	Status   string        `json:"status,omitempty"`
	Date     string        `json:"date,omitempty"`
	Evidence []EvidenceRef `json:"evidence"`
}

type DocumentRow struct {
	Title    string        `json:"title"`
	Type     string        `json:"type,omitempty"`
	Date     string        `json:"date,omitempty"`
	Evidence []EvidenceRef `json:"evidence"`
}

// Utilization is the trailing-365-day acute-care count block.
type Utilization struct {
	WindowDays      int           `json:"windowDays"`
	EDVisits        int           `json:"edVisits"`
	InpatientVisits int           `json:"inpatientVisits"`
	Evidence        []EvidenceRef `json:"evidence"`
}

// TimelineEvent is the uniform chronological projection of a record.
type TimelineEvent struct {
	At       string        `json:"at"`
	Kind     string        `json:"kind"`
	Label    string        `json:"label"`
	Summary  string        `json:"summary,omitempty"`
	Severity string        `json:"severity,omitempty"`
	Evidence []EvidenceRef `json:"evidence"`
}

// Banner is a synthesized attention item.
type Banner struct {
	Rule       string        `json:"rule"`
	Severity   string        `json:"severity"`
	Title      string        `json:"title"`
	Detail     string        `json:"detail,omitempty"`
	OccurredAt string        `json:"occurredAt,omitempty"`
	Evidence   []EvidenceRef `json:"evidence"`
}

// Snapshot groups the per-category summary lists.
type Snapshot struct {
	Problems      []ProblemRow       `json:"problems"`
	Medications   []MedicationRow    `json:"medications"`
	Allergies     []AllergyRow       `json:"allergies"`
	Immunizations []ImmunizationRow  `json:"immunizations"`
	Procedures    []ProcedureRow     `json:"procedures"`
	Vitals        []VitalRow         `json:"vitals"`
	Labs          []LabRow           `json:"labs"`
	SocialHistory []SocialHistoryRow `json:"socialHistory"`
	MentalStatus  []MentalStatusRow  `json:"mentalStatus"`
	Documents     []DocumentRow      `json:"documents"`
	Utilization   Utilization        `json:"utilization"`
}

// Summary is the root output object.
type Summary struct {
	Version   string                 `json:"version"`
	Patient   PatientSummary         `json:"patient"`
	Banners   []Banner               `json:"banners"`
	Snapshot  Snapshot               `json:"snapshot"`
	Timeline  []TimelineEvent        `json:"timeline"`
	Resources map[string]fhir.Record `json:"resources,omitempty"`
}

// evidence builds a single-element evidence list for a record.
func evidence(resourceType, id string) []EvidenceRef {
	return []EvidenceRef{{ResourceType: resourceType, ID: id}}
}

// appendEvidence appends refs, deduplicating on (resourceType, id) and
// keeping first-encounter order.
func appendEvidence(list []EvidenceRef, refs ...EvidenceRef) []EvidenceRef {
	for _, ref := range refs {
		if ref.ResourceType == "" && ref.ID == "" {
			continue
		}
		dup := false
		for _, have := range list {
			if have.ResourceType == ref.ResourceType && have.ID == ref.ID {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, ref)
		}
	}
	return list
}

// recordEvidence derives the evidence ref of a raw record.
func recordEvidence(rec fhir.Record) EvidenceRef {
	return EvidenceRef{
		ResourceType: fhir.Str(rec, "resourceType"),
		ID:           fhir.Str(rec, "id"),
	}
}

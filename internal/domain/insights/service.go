package insights

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinsight/insights/internal/platform/fhir"
	"github.com/clinsight/insights/internal/platform/telemetry"
)

// Options control per-request output shape.
type Options struct {
	// IncludeResources attaches the full flat record map to the summary
	// for drill-down consumers.
	IncludeResources bool
}

// Service derives a PatientInsightsSummary from a raw bundle. It is
// stateless per invocation: every call allocates its own record map and
// derived structures, so concurrent use needs no locking.
type Service struct {
	logger zerolog.Logger

	// now is injected so the rolling utilization and acute-care windows
	// are testable with frozen time.
	now func() time.Time
}

func NewService(logger zerolog.Logger) *Service {
	return &Service{logger: logger, now: time.Now}
}

// BuildInsights runs the whole pipeline: record extraction, category
// extraction, aggregation, timeline projection, and banner synthesis.
// Malformed or partial input degrades toward an empty but valid summary;
// only a truly unexpected failure surfaces as an error.
func (s *Service) BuildInsights(bundle interface{}, opts Options) (*Summary, error) {
	if bundle == nil {
		return nil, fmt.Errorf("bundle is required")
	}

	start := time.Now()
	now := s.now().UTC()
	records := fhir.ExtractRecords(bundle)

	snap := Snapshot{
		Problems:      extractProblems(records),
		Medications:   extractMedications(records),
		Allergies:     extractAllergies(records),
		Immunizations: extractImmunizations(records),
		Procedures:    extractProcedures(records),
		Labs:          extractLabs(records),
		SocialHistory: extractSocialHistory(records),
		MentalStatus:  extractMentalStatus(records),
		Documents:     extractDocuments(records),
		Utilization:   extractUtilization(records, now),
	}
	occurrences := vitalOccurrences(records)
	snap.Vitals = collapseVitals(occurrences)

	acute := recentAcuteEncounters(records, now)

	summary := &Summary{
		Version:  SchemaVersion,
		Patient:  extractPatient(records),
		Banners:  synthesizeBanners(snap, acute),
		Snapshot: snap,
		Timeline: buildTimeline(records, snap, occurrences),
	}
	if opts.IncludeResources {
		summary.Resources = records
	}

	telemetry.ObserveBuild(time.Since(start), len(records))
	s.logger.Debug().
		Int("records", len(records)).
		Int("banners", len(summary.Banners)).
		Int("timeline_events", len(summary.Timeline)).
		Msg("insights built")

	return summary, nil
}

package model

// Motif is a coded reason attached to a class deactivation. The set is
// closed: unknown codes are refused at the service boundary.
type Motif string

const (
	MotifYearEnd      Motif = "year_end"
	MotifMerged       Motif = "merged"
	MotifNoTeacher    Motif = "no_teacher"
	MotifLowEnrolment Motif = "low_enrolment"
	MotifOther        Motif = "other"
)

var motifLabels = map[Motif]string{
	MotifYearEnd:      "End of school year",
	MotifMerged:       "Merged into another class",
	MotifNoTeacher:    "No teacher assigned",
	MotifLowEnrolment: "Insufficient enrolment",
	MotifOther:        "Other",
}

// IsKnown checks if the motif belongs to the registry
func (m Motif) IsKnown() bool {
	_, ok := motifLabels[m]
	return ok
}

// Label returns the display label of the motif, or an empty string for
// unknown codes.
func (m Motif) Label() string {
	return motifLabels[m]
}

// Motifs returns all registered motif codes.
func Motifs() []Motif {
	codes := make([]Motif, 0, len(motifLabels))
	for m := range motifLabels {
		codes = append(codes, m)
	}
	return codes
}

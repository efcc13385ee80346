package entity

import "time"

// QC results. PENDING exists only as the initial value before submission;
// submissions must carry one of the other three.
const (
	QCResultPending     = "PENDING"
	QCResultApproved    = "APPROVED"
	QCResultRejected    = "REJECTED"
	QCResultConditional = "CONDITIONAL"
)

// QCChecklist holds the five pass/fail checks every prosthetic piece goes
// through before release.
type QCChecklist struct {
	MarginalIntegrity bool
	OcclusionChecked  bool
	ProximalContacts  bool
	ShadeMatch        bool
	SurfaceFinish     bool
}

// PassCount returns how many of the five checks passed.
func (c QCChecklist) PassCount() int {
	n := 0
	for _, ok := range [5]bool{c.MarginalIntegrity, c.OcclusionChecked, c.ProximalContacts, c.ShadeMatch, c.SurfaceFinish} {
		if ok {
			n++
		}
	}
	return n
}

// QualityControl is the QC verdict for a work sheet: one row per sheet,
// created at submission time. Notes justify a CONDITIONAL release;
// ActionRequired tells production what to fix after a rejection.
type QualityControl struct {
	ID             string
	WorksheetID    string
	Checklist      QCChecklist
	Result         string
	InspectorID    string
	Notes          string
	ActionRequired string
	CheckedAt      time.Time
	UpdatedAt      time.Time
}

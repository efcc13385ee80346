package dto

// QCChecklistDTO the five release checks.
type QCChecklistDTO struct {
	MarginalIntegrity bool `json:"marginal_integrity"`
	OcclusionChecked  bool `json:"occlusion_checked"`
	ProximalContacts  bool `json:"proximal_contacts"`
	ShadeMatch        bool `json:"shade_match"`
	SurfaceFinish     bool `json:"surface_finish"`
}

// SubmitQCRequest body for POST /api/worksheets/:id/qc.
type SubmitQCRequest struct {
	Checklist      QCChecklistDTO `json:"checklist"`
	Result         string         `json:"result"` // APPROVED, CONDITIONAL, REJECTED
	Notes          string         `json:"notes,omitempty"`
	ActionRequired string         `json:"action_required,omitempty"`
}

// QCResponse the stored verdict plus where the submission moved things.
type QCResponse struct {
	ID              string         `json:"id"`
	WorksheetID     string         `json:"worksheet_id"`
	Checklist       QCChecklistDTO `json:"checklist"`
	Result          string         `json:"result"`
	InspectorID     string         `json:"inspector_id"`
	Notes           string         `json:"notes,omitempty"`
	ActionRequired  string         `json:"action_required,omitempty"`
	CheckedAt       string         `json:"checked_at"`
	WorksheetStatus string         `json:"worksheet_status"`
	OrderStatus     string         `json:"order_status"`
	AutoDelivered   bool           `json:"auto_delivered,omitempty"`
}

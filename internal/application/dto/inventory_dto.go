package dto

import "github.com/shopspring/decimal"

// CreateMaterialRequest body for POST /api/materials.
type CreateMaterialRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	Biocompatible bool   `json:"biocompatible"`
	CEMarked      bool   `json:"ce_marked"`
	Unit          string `json:"unit"`
}

// UpdateMaterialRequest body for PUT /api/materials/:id. Code is immutable.
type UpdateMaterialRequest struct {
	Name          *string `json:"name,omitempty"`
	Type          *string `json:"type,omitempty"`
	Manufacturer  *string `json:"manufacturer,omitempty"`
	Biocompatible *bool   `json:"biocompatible,omitempty"`
	CEMarked      *bool   `json:"ce_marked,omitempty"`
	Unit          *string `json:"unit,omitempty"`
}

// MaterialResponse catalog material in responses.
type MaterialResponse struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Manufacturer  string `json:"manufacturer,omitempty"`
	Biocompatible bool   `json:"biocompatible"`
	CEMarked      bool   `json:"ce_marked"`
	Unit          string `json:"unit"`
}

// RecordArrivalRequest body for POST /api/materials/:id/lots. The CSV import
// tooling produces exactly this shape.
type RecordArrivalRequest struct {
	LotNumber  string          `json:"lot_number"`
	Supplier   string          `json:"supplier,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	ExpiryDate string          `json:"expiry_date,omitempty"` // YYYY-MM-DD
}

// CorrectLotRequest body for PUT /api/lots/:id. Admin correction with a
// mandatory reason; nil fields stay untouched.
type CorrectLotRequest struct {
	Status            *string          `json:"status,omitempty"`
	QuantityAvailable *decimal.Decimal `json:"quantity_available,omitempty"`
	ExpiryDate        *string          `json:"expiry_date,omitempty"` // YYYY-MM-DD, empty string clears
	Supplier          *string          `json:"supplier,omitempty"`
	Reason            string           `json:"reason"`
}

// LotResponse lot in responses.
type LotResponse struct {
	ID                string          `json:"id"`
	MaterialID        string          `json:"material_id"`
	LotNumber         string          `json:"lot_number"`
	Supplier          string          `json:"supplier,omitempty"`
	ArrivalDate       string          `json:"arrival_date"`
	ExpiryDate        string          `json:"expiry_date,omitempty"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	Status            string          `json:"status"`
}

// ConsumeRequest body for POST /api/worksheets/:id/consume.
type ConsumeRequest struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ConsumptionResponse result of a consumption: which lot was hit and what is
// left of it.
type ConsumptionResponse struct {
	WorksheetID   string          `json:"worksheet_id"`
	MaterialID    string          `json:"material_id"`
	LotID         string          `json:"lot_id"`
	LotNumber     string          `json:"lot_number"`
	QuantityUsed  decimal.Decimal `json:"quantity_used"`
	LotRemaining  decimal.Decimal `json:"lot_remaining"`
	LotStatus     string          `json:"lot_status"`
	TraceRecordID string          `json:"trace_record_id"`
}

// ForwardTraceResponse one affected device for a recall query.
type ForwardTraceResponse struct {
	MaterialCode    string          `json:"material_code"`
	MaterialName    string          `json:"material_name"`
	LotNumber       string          `json:"lot_number"`
	WorksheetNumber string          `json:"worksheet_number"`
	OrderNumber     string          `json:"order_number"`
	PatientRef      string          `json:"patient_ref,omitempty"`
	DentistName     string          `json:"dentist_name"`
	QuantityUsed    decimal.Decimal `json:"quantity_used"`
	RecordedAt      string          `json:"recorded_at"`
}

// ReverseTraceResponse one consumed lot for a device composition query.
type ReverseTraceResponse struct {
	MaterialCode string          `json:"material_code"`
	MaterialName string          `json:"material_name"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	LotNumber    string          `json:"lot_number"`
	Supplier     string          `json:"supplier,omitempty"`
	ExpiryDate   string          `json:"expiry_date,omitempty"`
	QuantityUsed decimal.Decimal `json:"quantity_used"`
	Unit         string          `json:"unit"`
	RecordedAt   string          `json:"recorded_at"`
}

// ExpiringAlertResponse one lot approaching expiry.
type ExpiringAlertResponse struct {
	LotID             string          `json:"lot_id"`
	LotNumber         string          `json:"lot_number"`
	MaterialCode      string          `json:"material_code"`
	MaterialName      string          `json:"material_name"`
	ExpiryDate        string          `json:"expiry_date"`
	DaysLeft          int             `json:"days_left"`
	Severity          string          `json:"severity"`
	QuantityAvailable decimal.Decimal `json:"quantity_available"`
	Unit              string          `json:"unit"`
}

// LowStockAlertResponse one material below the stock threshold, worst first.
type LowStockAlertResponse struct {
	MaterialID         string          `json:"material_id"`
	MaterialCode       string          `json:"material_code"`
	MaterialName       string          `json:"material_name"`
	Available          decimal.Decimal `json:"available"`
	Threshold          decimal.Decimal `json:"threshold"`
	PercentOfThreshold decimal.Decimal `json:"percent_of_threshold"`
	Unit               string          `json:"unit"`
}

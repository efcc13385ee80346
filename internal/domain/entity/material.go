package entity

import "time"

// Material categories the lab stocks. Free-form values are accepted; the
// constants cover what the intake forms offer.
const (
	MaterialTypeZirconia   = "ZIRCONIA"
	MaterialTypePMMA       = "PMMA"
	MaterialTypeAlloy      = "ALLOY"
	MaterialTypeCeramic    = "CERAMIC"
	MaterialTypeConsumable = "CONSUMABLE"
)

// Material is a catalog definition of a raw material. Physical stock lives in
// MaterialLot rows; a material with no lots has zero stock. Once any lot of the
// material has been consumed into a work sheet the material can no longer be
// deleted (regulatory identity).
type Material struct {
	ID            string
	Code          string // unique short code, e.g. ZR-KAT-A2
	Name          string
	Type          string
	Manufacturer  string
	Biocompatible bool
	CEMarked      bool
	Unit          string // g, ml, units, discs; what "1" of any lot quantity means
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

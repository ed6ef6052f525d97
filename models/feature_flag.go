package models

import "time"

// Module keys for the six togglable feature areas.
const (
	ModuleDealerPCC       = "dealer_pcc"
	ModuleAPIRegistration = "api_registration"
	ModuleMTMeet          = "mt_meet"
	ModuleWorkshopSurvey  = "workshop_survey"
	ModuleWarrantySurvey  = "warranty_survey"
	ModuleTechnicalSurvey = "technical_awareness_survey"
)

// ModuleKeys lists every togglable module.
var ModuleKeys = []string{
	ModuleDealerPCC,
	ModuleAPIRegistration,
	ModuleMTMeet,
	ModuleWorkshopSurvey,
	ModuleWarrantySurvey,
	ModuleTechnicalSurvey,
}

// FlagOwnerSystem marks a flag still carrying its seeded default. Defaults
// migration only ever touches flags owned by the system; a human override
// is permanent.
const FlagOwnerSystem = "system"

// FeatureFlag is the stored toggle for one module.
type FeatureFlag struct {
	ModuleKey      string    `gorm:"primaryKey;column:module_key;size:64" json:"module_key"`
	Enabled        bool      `gorm:"column:enabled" json:"enabled"`
	LastModifiedBy string    `gorm:"column:last_modified_by;size:64" json:"last_modified_by"`
	LastModifiedAt time.Time `gorm:"column:last_modified_at" json:"last_modified_at"`
	Reason         *string   `gorm:"column:reason" json:"reason,omitempty"`
}

func (FeatureFlag) TableName() string {
	return "feature_flags"
}

// ModuleInfo is display metadata for a module key.
type ModuleInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var moduleInfo = map[string]ModuleInfo{
	ModuleDealerPCC: {
		Name:        "Dealer PCC",
		Description: "Product Concern Capture submission and tracking system",
	},
	ModuleAPIRegistration: {
		Name:        "API Registration",
		Description: "Event-based participant registration management",
	},
	ModuleMTMeet: {
		Name:        "MT Meet",
		Description: "Master Technician meeting and event management",
	},
	ModuleWorkshopSurvey: {
		Name:        "Workshop System Survey",
		Description: "ElsaPro, ODIS, and tools feedback collection",
	},
	ModuleWarrantySurvey: {
		Name:        "Warranty Survey",
		Description: "Warranty process feedback and improvement",
	},
	ModuleTechnicalSurvey: {
		Name:        "Technical Awareness Survey",
		Description: "Technical knowledge assessment surveys",
	},
}

// GetModuleInfo returns display metadata for a module key.
func GetModuleInfo(key string) (ModuleInfo, bool) {
	info, ok := moduleInfo[key]
	return info, ok
}

// IsValidModuleKey reports whether key is one of the six module keys.
func IsValidModuleKey(key string) bool {
	_, ok := moduleInfo[key]
	return ok
}

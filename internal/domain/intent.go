package domain

// Appliance represents the appliance category a conversation is about
type Appliance string

const (
	// ApplianceUnset - No appliance selected yet
	ApplianceUnset Appliance = ""
	// ApplianceRefrigerator - Refrigerator category
	ApplianceRefrigerator Appliance = "refrigerator"
	// ApplianceDishwasher - Dishwasher category
	ApplianceDishwasher Appliance = "dishwasher"
)

// ServiceType represents the kind of help a user is asking for
type ServiceType string

const (
	// ServiceUnset - No service selected yet
	ServiceUnset ServiceType = ""
	// ServiceManual - Product manual or care guide lookup
	ServiceManual ServiceType = "manual"
	// ServiceParts - Replacement part search
	ServiceParts ServiceType = "parts"
	// ServiceDiagnosis - Symptom troubleshooting
	ServiceDiagnosis ServiceType = "diagnosis"
	// ServiceInstallation - Installation guidance
	ServiceInstallation ServiceType = "installation"
)

// Intent is the classifier's structured interpretation of one user turn.
// Fields left at their zero value inherit from the session. Created fresh
// per turn and never persisted beyond it.
type Intent struct {
	Appliance   Appliance
	Service     ServiceType
	ModelNumber string
	Query       string // free-text remainder after keyword extraction
	Reset       bool   // user asked to start over
	OutOfDomain bool   // text has no appliance vocabulary at all
}

package domain

import "strings"

// Priority ranks jobs and emergency calls.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Priorities is the allow-list accepted by imports.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// JobType classifies scheduled work.
type JobType string

const (
	JobTypeMaintenance   JobType = "MAINTENANCE"
	JobTypeRepair        JobType = "REPAIR"
	JobTypeInspection    JobType = "INSPECTION"
	JobTypeInstallation  JobType = "INSTALLATION"
	JobTypeModernization JobType = "MODERNIZATION"
	JobTypeEmergency     JobType = "EMERGENCY"
)

// JobTypes is the allow-list accepted by imports.
var JobTypes = []JobType{
	JobTypeMaintenance,
	JobTypeRepair,
	JobTypeInspection,
	JobTypeInstallation,
	JobTypeModernization,
	JobTypeEmergency,
}

// InspectionType classifies inspections.
type InspectionType string

const (
	InspectionTypeAnnual     InspectionType = "ANNUAL"
	InspectionTypePeriodic   InspectionType = "PERIODIC"
	InspectionTypeAcceptance InspectionType = "ACCEPTANCE"
	InspectionTypeFollowUp   InspectionType = "FOLLOW_UP"
)

// InspectionTypes is the allow-list accepted by imports.
var InspectionTypes = []InspectionType{
	InspectionTypeAnnual,
	InspectionTypePeriodic,
	InspectionTypeAcceptance,
	InspectionTypeFollowUp,
}

// EnumValues renders an allow-list for error messages.
func EnumValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// InEnum reports whether v is a member of values.
func InEnum[T ~string](v T, values []T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

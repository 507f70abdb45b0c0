package domain

import "fmt"

// CodeDomain identifies an independent per-tenant code sequence.
type CodeDomain string

const (
	CodeDomainJob         CodeDomain = "job"
	CodeDomainEmergency   CodeDomain = "emergency"
	CodeDomainInspection  CodeDomain = "inspection"
	CodeDomainMaintenance CodeDomain = "maintenance"
)

const codeDigits = 6

// Prefix returns the letter that leads every code minted in this domain.
func (d CodeDomain) Prefix() string {
	switch d {
	case CodeDomainJob:
		return "J"
	case CodeDomainEmergency:
		return "E"
	case CodeDomainInspection:
		return "I"
	case CodeDomainMaintenance:
		return "M"
	default:
		return ""
	}
}

// Valid reports whether d is a known code domain.
func (d CodeDomain) Valid() bool {
	return d.Prefix() != ""
}

// FormatCode renders n as a human readable code, e.g. J-000042.
func FormatCode(d CodeDomain, n int64) string {
	return fmt.Sprintf("%s-%0*d", d.Prefix(), codeDigits, n)
}

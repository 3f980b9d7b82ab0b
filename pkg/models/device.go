// Package models defines the device and application records FleetGauge
// aggregates. Field names and JSON tags follow the management API's wire
// shape (camelCase), so fetched payloads decode directly into these types.
package models

import "time"

// ComplianceState classifies a device's policy adherence.
type ComplianceState string

const (
	ComplianceCompliant    ComplianceState = "compliant"
	ComplianceNoncompliant ComplianceState = "noncompliant"
	ComplianceUnknown      ComplianceState = "unknown"
)

// IsCompliant reports whether the state counts as a successful deployment.
// The match is exact and case-sensitive: "Compliant" or "COMPLIANT" do not
// count. This mirrors the upstream API contract, which only ever emits the
// lowercase form.
func (s ComplianceState) IsCompliant() bool {
	return s == ComplianceCompliant
}

// Device is one managed endpoint's snapshot of identity, compliance, and
// installed software. Devices are immutable per fetch; they are read and
// folded into statistics, never mutated.
type Device struct {
	ID                    string                 `json:"id"`
	DeviceName            string                 `json:"deviceName"`
	OperatingSystem       string                 `json:"operatingSystem"`
	OSVersion             string                 `json:"osVersion"`
	OSDescription         string                 `json:"osDescription,omitempty"`
	LastSyncDateTime      time.Time              `json:"lastSyncDateTime"`
	ComplianceState       ComplianceState        `json:"complianceState"`
	ManagementAgent       string                 `json:"managementAgent,omitempty"`
	UserDisplayName       string                 `json:"userDisplayName"`
	UserPrincipalName     string                 `json:"userPrincipalName"`
	MailNickname          string                 `json:"mailNickname,omitempty"`
	Department            string                 `json:"department"`
	Model                 string                 `json:"model,omitempty"`
	SerialNumber          string                 `json:"serialNumber,omitempty"`
	SKUFamily             string                 `json:"skuFamily,omitempty"`
	Platform              string                 `json:"platform"`
	InstalledApplications []InstalledApplication `json:"installedApplications"`
}

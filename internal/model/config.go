package model

import "time"

// Config is the admin-mutable timing policy. A change affects only future
// deadline computations; deadlines already materialized on an entity are
// immutable.
type Config struct {
	LawyerApprovalHours  int `json:"lawyerApprovalHours"`
	ClientPaymentMinutes int `json:"clientPaymentMinutes"`
	CasePaymentDays      int `json:"casePaymentDays"`
}

// ConfigPatch carries a partial update; nil fields are left unchanged.
type ConfigPatch struct {
	LawyerApprovalHours  *int `json:"lawyerApprovalHours,omitempty"`
	ClientPaymentMinutes *int `json:"clientPaymentMinutes,omitempty"`
	CasePaymentDays      *int `json:"casePaymentDays,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		LawyerApprovalHours:  24,
		ClientPaymentMinutes: 30,
		CasePaymentDays:      7,
	}
}

func (c Config) ApprovalWindow() time.Duration {
	return time.Duration(c.LawyerApprovalHours) * time.Hour
}

func (c Config) PaymentWindow() time.Duration {
	return time.Duration(c.ClientPaymentMinutes) * time.Minute
}

func (c Config) CasePaymentWindow() time.Duration {
	return time.Duration(c.CasePaymentDays) * 24 * time.Hour
}

package models

// TaskStatus enum
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions are allowed
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// DomainStatus enum
type DomainStatus string

const (
	DomainStatusPending DomainStatus = "PENDING"
	DomainStatusActive  DomainStatus = "ACTIVE"
	DomainStatusFailed  DomainStatus = "FAILED"
	// DomainStatusExpired is reserved for verification-timeout sweeping;
	// no current flow sets it.
	DomainStatusExpired DomainStatus = "EXPIRED"
)

// DomainType enum
type DomainType string

const (
	DomainTypeGenerated DomainType = "GENERATED"
	DomainTypeCustom    DomainType = "CUSTOM"
)

// TLSStatus enum
type TLSStatus string

const (
	TLSStatusPending TLSStatus = "PENDING"
	TLSStatusIssued  TLSStatus = "ISSUED"
	TLSStatusFailed  TLSStatus = "FAILED"
)

// VerificationMethod enum
type VerificationMethod string

const (
	VerificationMethodDNSTXT VerificationMethod = "DNS_TXT"
)

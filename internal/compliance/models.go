package compliance

import (
	"time"

	"github.com/google/uuid"

	"convoy/pkg/domain"
	derrors "convoy/pkg/domain-errors"
)

// Priority ranks queue items. Rank orders High before Medium before Low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority constructs a Priority from external input.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	}
	return "", derrors.Newf(derrors.CodeValidation, "unknown priority %q", s)
}

// Rank returns the sort rank; lower sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// TaskStatus tracks a compliance task's progress.
type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Task is a manually tracked compliance obligation.
type Task struct {
	ID       domain.TaskID   `json:"id"`
	OrgID    domain.OrgID    `json:"org_id"`
	DriverID domain.DriverID `json:"driver_id,omitzero"`

	Title    string     `json:"title"`
	Status   TaskStatus `json:"status"`
	Priority Priority   `json:"priority"`
	DueDate  *time.Time `json:"due_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate enforces task creation preconditions.
func (t *Task) Validate() error {
	if t.OrgID.IsNil() {
		return derrors.New(derrors.CodeValidation, "organization id is required")
	}
	if t.Title == "" {
		return derrors.New(derrors.CodeValidation, "title is required")
	}
	if _, err := ParsePriority(string(t.Priority)); err != nil {
		return err
	}
	switch t.Status {
	case TaskOpen, TaskInProgress, TaskCompleted:
	default:
		return derrors.Newf(derrors.CodeValidation, "unknown task status %q", t.Status)
	}
	return nil
}

// RemediationStatus tracks corrective work against an inspection finding.
type RemediationStatus string

const (
	RemediationOpen       RemediationStatus = "open"
	RemediationInProgress RemediationStatus = "in_progress"
	RemediationClosed     RemediationStatus = "closed"
)

// Inspection records a finding and its remediation state.
type Inspection struct {
	ID       uuid.UUID       `json:"id"`
	OrgID    domain.OrgID    `json:"org_id"`
	DriverID domain.DriverID `json:"driver_id,omitzero"`

	Finding            string            `json:"finding"`
	RemediationStatus  RemediationStatus `json:"remediation_status"`
	RemediationDueDate *time.Time        `json:"remediation_due_date,omitempty"`

	InspectedAt time.Time `json:"inspected_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate enforces inspection creation preconditions.
func (i *Inspection) Validate() error {
	if i.OrgID.IsNil() {
		return derrors.New(derrors.CodeValidation, "organization id is required")
	}
	if i.Finding == "" {
		return derrors.New(derrors.CodeValidation, "finding is required")
	}
	switch i.RemediationStatus {
	case RemediationOpen, RemediationInProgress, RemediationClosed:
	default:
		return derrors.Newf(derrors.CodeValidation, "unknown remediation status %q", i.RemediationStatus)
	}
	return nil
}

// DocumentCategory classifies an organization-level required document.
type DocumentCategory string

const (
	DocInsurance    DocumentCategory = "insurance"
	DocRegistration DocumentCategory = "registration"
)

// RequiredDocumentCategories is the baseline set every organization must
// keep unexpired.
var RequiredDocumentCategories = []DocumentCategory{DocInsurance, DocRegistration}

// Document is an organization-level filed document with an expiry.
type Document struct {
	ID       uuid.UUID        `json:"id"`
	OrgID    domain.OrgID     `json:"org_id"`
	Category DocumentCategory `json:"category"`

	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	UploadedAt time.Time `json:"uploaded_at"`
}

// Validate enforces document filing preconditions.
func (d *Document) Validate() error {
	if d.OrgID.IsNil() {
		return derrors.New(derrors.CodeValidation, "organization id is required")
	}
	if d.Category == "" {
		return derrors.New(derrors.CodeValidation, "category is required")
	}
	return nil
}

// Queue item source kinds.
const (
	SourceTask       = "task"
	SourceInspection = "inspection"
	SourceDocument   = "document"
	SourceCredential = "credential"
)

// QueueItem is one entry in the merged compliance action queue. Derived,
// never persisted.
type QueueItem struct {
	Source      string          `json:"source"`
	RefID       string          `json:"ref_id"`
	DriverID    domain.DriverID `json:"driver_id,omitzero"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    Priority        `json:"priority"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
}

// CredentialBand bands a credential's expiry urgency.
type CredentialBand string

const (
	CredentialCritical CredentialBand = "critical"
	CredentialWarning  CredentialBand = "warning"
	CredentialGood     CredentialBand = "good"
)

// Credential kinds tracked per driver.
const (
	CredentialLicense     = "license"
	CredentialMedicalCard = "medical_card"
)

// CredentialStatus is one driver credential with its expiry band.
type CredentialStatus struct {
	DriverID   domain.DriverID `json:"driver_id"`
	DriverName string          `json:"driver_name"`
	Kind       string          `json:"kind"`
	ExpiresAt  time.Time       `json:"expires_at"`
	Band       CredentialBand  `json:"band"`
}

// Snapshot is the full compliance view for one organization.
type Snapshot struct {
	OrgID       domain.OrgID       `json:"org_id"`
	AsOf        time.Time          `json:"as_of"`
	ActionQueue []QueueItem        `json:"action_queue"`
	Credentials []CredentialStatus `json:"credentials"`
}

package compliance

import (
	"fmt"
	"sort"
	"time"

	fleetmodels "convoy/internal/fleet/models"
)

// farFuture is the sort sentinel for undated items; they always land after
// every real due date.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Gap statuses for synthetic document and credential items.
const (
	StatusMissing = "missing"
	StatusExpired = "expired"
)

// taskItems lifts open compliance tasks into the queue, carrying their own
// priority and due date.
func taskItems(tasks []*Task) []QueueItem {
	var out []QueueItem
	for _, t := range tasks {
		if t.Status == TaskCompleted {
			continue
		}
		out = append(out, QueueItem{
			Source:      SourceTask,
			RefID:       t.ID.String(),
			DriverID:    t.DriverID,
			Description: t.Title,
			Status:      string(t.Status),
			Priority:    t.Priority,
			DueDate:     t.DueDate,
		})
	}
	return out
}

// inspectionItems lifts open remediations into the queue. Overdue
// remediations escalate to high priority.
func inspectionItems(inspections []*Inspection, today time.Time) []QueueItem {
	var out []QueueItem
	for _, i := range inspections {
		if i.RemediationStatus == RemediationClosed {
			continue
		}
		priority := PriorityMedium
		if i.RemediationDueDate != nil && i.RemediationDueDate.Before(today) {
			priority = PriorityHigh
		}
		out = append(out, QueueItem{
			Source:      SourceInspection,
			RefID:       i.ID.String(),
			DriverID:    i.DriverID,
			Description: i.Finding,
			Status:      string(i.RemediationStatus),
			Priority:    priority,
			DueDate:     i.RemediationDueDate,
		})
	}
	return out
}

// documentGapItems synthesizes one high-priority item per required category
// that has no unexpired document on file.
func documentGapItems(docs []*Document, today time.Time) []QueueItem {
	var out []QueueItem
	for _, category := range RequiredDocumentCategories {
		var latestExpired *Document
		covered := false
		for _, d := range docs {
			if d.Category != category {
				continue
			}
			if d.ExpiresAt == nil || !d.ExpiresAt.Before(today) {
				covered = true
				break
			}
			if latestExpired == nil || d.ExpiresAt.After(*latestExpired.ExpiresAt) {
				latestExpired = d
			}
		}
		if covered {
			continue
		}

		item := QueueItem{
			Source:      SourceDocument,
			RefID:       string(category),
			Description: fmt.Sprintf("required document %q has no valid copy on file", category),
			Status:      StatusMissing,
			Priority:    PriorityHigh,
		}
		if latestExpired != nil {
			item.Status = StatusExpired
			item.DueDate = latestExpired.ExpiresAt
		}
		out = append(out, item)
	}
	return out
}

// credentialGapItems synthesizes one high-priority item per driver
// credential with no expiration date on record.
func credentialGapItems(drivers []*fleetmodels.Driver) []QueueItem {
	var out []QueueItem
	for _, d := range drivers {
		if d.LicenseExpiry == nil {
			out = append(out, QueueItem{
				Source:      SourceCredential,
				RefID:       fmt.Sprintf("%s/%s", d.ID, CredentialLicense),
				DriverID:    d.ID,
				Description: fmt.Sprintf("%s has no license expiration on record", d.Name),
				Status:      StatusMissing,
				Priority:    PriorityHigh,
			})
		}
		if d.MedicalCardExpiry == nil {
			out = append(out, QueueItem{
				Source:      SourceCredential,
				RefID:       fmt.Sprintf("%s/%s", d.ID, CredentialMedicalCard),
				DriverID:    d.ID,
				Description: fmt.Sprintf("%s has no medical card expiration on record", d.Name),
				Status:      StatusMissing,
				Priority:    PriorityHigh,
			})
		}
	}
	return out
}

// BuildActionQueue merges the three sources and sorts by priority rank,
// then due date ascending with undated items last.
func BuildActionQueue(tasks []*Task, inspections []*Inspection, docs []*Document, drivers []*fleetmodels.Driver, today time.Time) []QueueItem {
	queue := taskItems(tasks)
	queue = append(queue, inspectionItems(inspections, today)...)
	queue = append(queue, documentGapItems(docs, today)...)
	queue = append(queue, credentialGapItems(drivers)...)

	due := func(i QueueItem) time.Time {
		if i.DueDate == nil {
			return farFuture
		}
		return *i.DueDate
	}
	sort.SliceStable(queue, func(a, b int) bool {
		if queue[a].Priority.Rank() != queue[b].Priority.Rank() {
			return queue[a].Priority.Rank() < queue[b].Priority.Rank()
		}
		return due(queue[a]).Before(due(queue[b]))
	})
	return queue
}

// BandCredential bands one expiry date against today.
func BandCredential(expiresAt, today time.Time) CredentialBand {
	switch {
	case expiresAt.Before(today):
		return CredentialCritical
	case !expiresAt.After(today.AddDate(0, 0, 30)):
		return CredentialWarning
	default:
		return CredentialGood
	}
}

// CredentialReport lists dated driver credentials with their urgency band,
// sorted ascending by expiry. Credentials with no date are covered by the
// action queue, not this report.
func CredentialReport(drivers []*fleetmodels.Driver, today time.Time) []CredentialStatus {
	var out []CredentialStatus
	for _, d := range drivers {
		if d.LicenseExpiry != nil {
			out = append(out, CredentialStatus{
				DriverID:   d.ID,
				DriverName: d.Name,
				Kind:       CredentialLicense,
				ExpiresAt:  *d.LicenseExpiry,
				Band:       BandCredential(*d.LicenseExpiry, today),
			})
		}
		if d.MedicalCardExpiry != nil {
			out = append(out, CredentialStatus{
				DriverID:   d.ID,
				DriverName: d.Name,
				Kind:       CredentialMedicalCard,
				ExpiresAt:  *d.MedicalCardExpiry,
				Band:       BandCredential(*d.MedicalCardExpiry, today),
			})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].ExpiresAt.Before(out[b].ExpiresAt)
	})
	return out
}

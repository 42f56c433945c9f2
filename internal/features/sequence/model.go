package sequence

import (
	"time"

	"crm-notifications/internal/common/events"
	"crm-notifications/internal/common/models"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusStopped  Status = "stopped"
)

const ReasonIntegrationError = "integration_error"

type Sequence struct {
	ID               models.ID  `bson:"_id" json:"id"`
	Name             string     `bson:"name" json:"name"`
	OwnerID          models.ID  `bson:"owner_id" json:"owner_id"`
	CompanyAccountID models.ID  `bson:"company_account_id" json:"company_account_id"`
	Status           Status     `bson:"status" json:"status"`
	DeactivatedBy    *string    `bson:"deactivated_by,omitempty" json:"deactivated_by,omitempty"`
	DeactivatedAt    *time.Time `bson:"deactivated_at,omitempty" json:"deactivated_at,omitempty"`
	Version          int        `bson:"version" json:"version"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updated_at"`
}

func (s *Sequence) IsActive() bool {
	return s.Status == StatusActive
}

// ApplyIntegrationErrorOccurred deactivates the sequence because the
// integration it sends through failed. Inactive sequences are left alone.
func (s *Sequence) ApplyIntegrationErrorOccurred(repo SequenceRepository, e events.IntegrationErrorOccurred) {
	if !s.IsActive() {
		return
	}
	ts := time.Now().UTC().Truncate(time.Millisecond)
	reason := ReasonIntegrationError
	if integration := e.Integration(); integration != nil {
		reason = ReasonIntegrationError + ":" + integration.UUID().String()
	}
	s.Status = StatusInactive
	s.DeactivatedBy = &reason
	s.DeactivatedAt = &ts
	s.UpdatedAt = ts
	s.Version++
	repo.Store(s)
}

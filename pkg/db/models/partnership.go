package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/pkg/enums"
)

// Partnership links a producer store with a processor store. The pair is
// unique regardless of which side initiated it (partnerships_pair_key).
type Partnership struct {
	ID                uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProducerStoreID   uuid.UUID               `gorm:"column:producer_store_id;type:uuid;not null"`
	ProcessorStoreID  uuid.UUID               `gorm:"column:processor_store_id;type:uuid;not null"`
	InitiatedByStore  uuid.UUID               `gorm:"column:initiated_by_store_id;type:uuid;not null"`
	Status            enums.PartnershipStatus `gorm:"column:status;type:partnership_status;not null;default:'pending'"`
	Terms             *string                 `gorm:"column:terms"`
	TerminationReason *string                 `gorm:"column:termination_reason"`
	TerminatedAt      *time.Time              `gorm:"column:terminated_at"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

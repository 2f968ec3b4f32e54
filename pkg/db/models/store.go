package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pasturelink/marketplace-backend/pkg/enums"
	"github.com/pasturelink/marketplace-backend/pkg/types"
)

// Store is the merchant storefront record created during onboarding.
type Store struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID       `gorm:"column:owner;type:uuid;not null"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Type        enums.StoreType `gorm:"column:type;type:store_type;not null;default:'independent'"`
	Categories  pq.StringArray  `gorm:"column:categories;type:text[]"`

	CanProduce       bool    `gorm:"column:can_produce;not null;default:false"`
	CanProcess       bool    `gorm:"column:can_process;not null;default:false"`
	CanRetail        bool    `gorm:"column:can_retail;not null;default:true"`
	NeedsPartnership bool    `gorm:"column:needs_partnership;not null;default:false"`
	PartnershipType  *string `gorm:"column:partnership_type"`

	BusinessAddress      *types.Address `gorm:"column:business_address;type:jsonb"`
	BillingAddress       *types.Address `gorm:"column:billing_address;type:jsonb"`
	BillingSameAsAddress bool           `gorm:"column:billing_same_as_address;not null;default:true"`
	SellingMethods       pq.StringArray `gorm:"column:selling_methods;type:text[]"`
	DeliveryRadiusMiles  float64        `gorm:"column:delivery_radius_miles;not null;default:0"`

	OpenHours types.WeekHours `gorm:"column:open_hours;type:jsonb"`

	LogoURL     *string        `gorm:"column:logo_url"`
	BannerURL   *string        `gorm:"column:banner_url"`
	GalleryURLs pq.StringArray `gorm:"column:gallery_urls;type:text[]"`
	VideoURL    *string        `gorm:"column:video_url"`

	SubmissionStatus enums.SubmissionStatus `gorm:"column:submission_status;type:submission_status;not null;default:'draft'"`
	SubmittedAt      *time.Time             `gorm:"column:submitted_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

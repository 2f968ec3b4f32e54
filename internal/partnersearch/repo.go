package partnersearch

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/marketplace-backend/pkg/enums"
	"github.com/pasturelink/marketplace-backend/pkg/types"
)

// CandidateRow is one nearby store returned by the radius query.
type CandidateRow struct {
	StoreID       uuid.UUID
	Name          string
	Type          enums.StoreType
	Address       *types.Address
	DistanceMiles float64
}

// Repository runs the radius query against the stores table.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to partner search queries.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// partnerStoreTypes maps the requested partner role to the store types that
// can fill it. Hybrid stores qualify for either side.
func partnerStoreTypes(partnerType enums.PartnerRole) []enums.StoreType {
	if partnerType == enums.PartnerRoleProducer {
		return []enums.StoreType{enums.StoreTypeProducer, enums.StoreTypeHybrid}
	}
	return []enums.StoreType{enums.StoreTypeProcessor, enums.StoreTypeHybrid}
}

// FindNearby returns approved stores of the requested type within the radius,
// ordered nearest first. Distance uses the haversine formula over the jsonb
// address coordinates; 3959 is the earth radius in miles.
func (r *Repository) FindNearby(ctx context.Context, origin types.Address, partnerType enums.PartnerRole, radiusMiles float64) ([]CandidateRow, error) {
	const query = `
		SELECT id, name, type, business_address,
			3959 * acos(
				least(1.0,
					cos(radians(?)) * cos(radians((business_address->>'lat')::float8)) *
					cos(radians((business_address->>'lng')::float8) - radians(?)) +
					sin(radians(?)) * sin(radians((business_address->>'lat')::float8))
				)
			) AS distance_miles
		FROM stores
		WHERE type IN ?
		  AND submission_status = 'approved'
		  AND business_address IS NOT NULL
		  AND 3959 * acos(
				least(1.0,
					cos(radians(?)) * cos(radians((business_address->>'lat')::float8)) *
					cos(radians((business_address->>'lng')::float8) - radians(?)) +
					sin(radians(?)) * sin(radians((business_address->>'lat')::float8))
				)
			) <= ?
		ORDER BY distance_miles ASC`

	storeTypes := partnerStoreTypes(partnerType)
	typeValues := make([]string, 0, len(storeTypes))
	for _, t := range storeTypes {
		typeValues = append(typeValues, t.String())
	}

	type row struct {
		ID              uuid.UUID
		Name            string
		Type            enums.StoreType
		BusinessAddress *types.Address `gorm:"column:business_address"`
		DistanceMiles   float64
	}
	var rows []row
	err := r.db.WithContext(ctx).Raw(query,
		origin.Lat, origin.Lng, origin.Lat,
		typeValues,
		origin.Lat, origin.Lng, origin.Lat,
		radiusMiles,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]CandidateRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, CandidateRow{
			StoreID:       r.ID,
			Name:          r.Name,
			Type:          r.Type,
			Address:       r.BusinessAddress,
			DistanceMiles: r.DistanceMiles,
		})
	}
	return out, nil
}

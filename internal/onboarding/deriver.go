package onboarding

import (
	"sort"

	"github.com/pasturelink/marketplace-backend/internal/flowcatalog"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
)

// OptionLookup resolves a category's chosen flow option.
type OptionLookup interface {
	Option(category, optionKey string) (flowcatalog.CategoryFlowOption, bool)
}

// Derive computes the store configuration implied by the selected categories
// and their answers. Pure and idempotent; categories are walked in sorted
// order so the last-writer-wins rule for the partnership type is
// deterministic. Categories without a catalog entry or without an answer
// contribute nothing.
func Derive(categories []string, answers map[string]string, lookup OptionLookup) DerivedStoreConfig {
	cfg := DerivedStoreConfig{
		StoreType: enums.StoreTypeIndependent,
		CanRetail: true,
	}
	if lookup == nil {
		return cfg
	}

	sorted := make([]string, len(categories))
	copy(sorted, categories)
	sort.Strings(sorted)

	for _, category := range sorted {
		answer, ok := answers[category]
		if !ok {
			continue
		}
		option, ok := lookup.Option(category, answer)
		if !ok {
			continue
		}

		cfg.CanProduce = cfg.CanProduce || option.CanProduce
		cfg.CanProcess = cfg.CanProcess || option.CanProcess
		if option.CanRetail != nil {
			cfg.CanRetail = *option.CanRetail
		}
		if option.NeedsPartnerships {
			cfg.NeedsPartnerships = true
			if role, err := enums.ParsePartnerRole(option.PartnerType); err == nil {
				cfg.PartnershipType = role
			}
		}
	}

	switch {
	case cfg.CanProduce && cfg.CanProcess:
		cfg.StoreType = enums.StoreTypeHybrid
	case cfg.CanProduce:
		cfg.StoreType = enums.StoreTypeProducer
	case cfg.CanProcess:
		cfg.StoreType = enums.StoreTypeProcessor
	default:
		cfg.StoreType = enums.StoreTypeIndependent
	}

	return cfg
}

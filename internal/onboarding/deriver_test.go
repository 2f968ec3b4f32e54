package onboarding

import (
	"testing"

	"github.com/pasturelink/marketplace-backend/internal/flowcatalog"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
)

type stubLookup struct {
	options map[string]map[string]flowcatalog.CategoryFlowOption
}

func (s stubLookup) Option(category, optionKey string) (flowcatalog.CategoryFlowOption, bool) {
	byKey, ok := s.options[category]
	if !ok {
		return flowcatalog.CategoryFlowOption{}, false
	}
	option, ok := byKey[optionKey]
	return option, ok
}

func boolPtr(v bool) *bool { return &v }

func TestDeriveDefaultsToIndependentRetailer(t *testing.T) {
	t.Parallel()

	cfg := Derive(nil, nil, stubLookup{})

	if cfg.StoreType != enums.StoreTypeIndependent {
		t.Fatalf("expected independent, got %s", cfg.StoreType)
	}
	if !cfg.CanRetail || cfg.CanProduce || cfg.CanProcess {
		t.Fatalf("unexpected capabilities: %+v", cfg)
	}
	if cfg.NeedsPartnerships {
		t.Fatalf("no answers should not require partnerships")
	}
}

func TestDeriveProducerNeedingProcessorPartner(t *testing.T) {
	t.Parallel()

	lookup := stubLookup{options: map[string]map[string]flowcatalog.CategoryFlowOption{
		"flower": {
			"grow_own": {
				Key:               "grow_own",
				CanProduce:        true,
				NeedsPartnerships: true,
				PartnerType:       "processor",
			},
		},
	}}

	cfg := Derive([]string{"flower"}, map[string]string{"flower": "grow_own"}, lookup)

	if cfg.StoreType != enums.StoreTypeProducer {
		t.Fatalf("expected producer, got %s", cfg.StoreType)
	}
	if !cfg.NeedsPartnerships || cfg.PartnershipType != enums.PartnerRoleProcessor {
		t.Fatalf("expected processor partnership requirement, got %+v", cfg)
	}
}

func TestDeriveORsCapabilitiesAcrossCategories(t *testing.T) {
	t.Parallel()

	lookup := stubLookup{options: map[string]map[string]flowcatalog.CategoryFlowOption{
		"flower":       {"grow_own": {CanProduce: true}},
		"concentrates": {"process_own": {CanProcess: true}},
	}}

	cfg := Derive(
		[]string{"concentrates", "flower"},
		map[string]string{"flower": "grow_own", "concentrates": "process_own"},
		lookup,
	)

	if cfg.StoreType != enums.StoreTypeHybrid {
		t.Fatalf("expected hybrid, got %s", cfg.StoreType)
	}
	if !cfg.CanProduce || !cfg.CanProcess {
		t.Fatalf("capabilities should OR across categories: %+v", cfg)
	}
}

func TestDeriveCanRetailOverride(t *testing.T) {
	t.Parallel()

	lookup := stubLookup{options: map[string]map[string]flowcatalog.CategoryFlowOption{
		"flower": {"wholesale_only": {CanProduce: true, CanRetail: boolPtr(false)}},
	}}

	cfg := Derive([]string{"flower"}, map[string]string{"flower": "wholesale_only"}, lookup)

	if cfg.CanRetail {
		t.Fatalf("option should override the retail default")
	}
}

func TestDerivePartnershipTypeLastWriterWins(t *testing.T) {
	t.Parallel()

	lookup := stubLookup{options: map[string]map[string]flowcatalog.CategoryFlowOption{
		"alpha": {"a": {CanProcess: true, NeedsPartnerships: true, PartnerType: "producer"}},
		"beta":  {"b": {CanProduce: true, NeedsPartnerships: true, PartnerType: "processor"}},
	}}

	answers := map[string]string{"alpha": "a", "beta": "b"}

	// Categories are walked sorted, so beta settles last regardless of the
	// order the caller supplies.
	first := Derive([]string{"alpha", "beta"}, answers, lookup)
	second := Derive([]string{"beta", "alpha"}, answers, lookup)

	if first.PartnershipType != enums.PartnerRoleProcessor {
		t.Fatalf("expected processor to win, got %s", first.PartnershipType)
	}
	if first != second {
		t.Fatalf("derivation must not depend on input order: %+v vs %+v", first, second)
	}
}

func TestDeriveIgnoresUnknownCategoriesAndMissingAnswers(t *testing.T) {
	t.Parallel()

	lookup := stubLookup{options: map[string]map[string]flowcatalog.CategoryFlowOption{
		"flower": {"grow_own": {CanProduce: true}},
	}}

	cfg := Derive(
		[]string{"flower", "edibles", "accessories"},
		map[string]string{"flower": "grow_own", "edibles": "unknown_option"},
		lookup,
	)

	if cfg.StoreType != enums.StoreTypeProducer {
		t.Fatalf("unknown inputs should contribute nothing, got %s", cfg.StoreType)
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	t.Parallel()

	lookup := stubLookup{options: map[string]map[string]flowcatalog.CategoryFlowOption{
		"flower": {"grow_own": {CanProduce: true, NeedsPartnerships: true, PartnerType: "processor"}},
	}}
	categories := []string{"flower"}
	answers := map[string]string{"flower": "grow_own"}

	first := Derive(categories, answers, lookup)
	second := Derive(categories, answers, lookup)

	if first != second {
		t.Fatalf("repeated derivation diverged: %+v vs %+v", first, second)
	}
}

func TestDerivedStoreConfigRole(t *testing.T) {
	t.Parallel()

	producer := DerivedStoreConfig{CanProduce: true}
	if producer.Role() != enums.PartnerRoleProducer {
		t.Fatalf("producer store should take the producer side")
	}

	processor := DerivedStoreConfig{CanProcess: true}
	if processor.Role() != enums.PartnerRoleProcessor {
		t.Fatalf("processor store should take the processor side")
	}

	hybrid := DerivedStoreConfig{CanProduce: true, CanProcess: true}
	if hybrid.Role() != enums.PartnerRoleProducer {
		t.Fatalf("hybrid stores initiate as producers")
	}
}

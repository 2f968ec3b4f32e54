package onboarding

import (
	"testing"

	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
)

func TestVisibleStepsSkipsPartnershipWhenNotNeeded(t *testing.T) {
	t.Parallel()

	steps := VisibleSteps(DerivedStoreConfig{}, false)

	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d: %v", len(steps), steps)
	}
	for _, step := range steps {
		if step == enums.WizardStepPartnership {
			t.Fatalf("partnership step should be hidden: %v", steps)
		}
	}
}

func TestVisibleStepsIncludesPartnershipWhenNeeded(t *testing.T) {
	t.Parallel()

	steps := VisibleSteps(DerivedStoreConfig{NeedsPartnerships: true}, false)

	if len(steps) != 6 || steps[2] != enums.WizardStepPartnership {
		t.Fatalf("expected partnership at index 2, got %v", steps)
	}
}

func TestVisibleStepsKeepsPartnershipForExistingPartnerships(t *testing.T) {
	t.Parallel()

	// A store that no longer needs partnerships still manages the ones it has.
	steps := VisibleSteps(DerivedStoreConfig{}, true)

	if steps[2] != enums.WizardStepPartnership {
		t.Fatalf("expected partnership step retained, got %v", steps)
	}
}

func TestClampIndexAfterListShrinks(t *testing.T) {
	t.Parallel()

	long := VisibleSteps(DerivedStoreConfig{NeedsPartnerships: true}, false)
	short := VisibleSteps(DerivedStoreConfig{}, false)

	last := len(long) - 1
	if got := ClampIndex(last, short); got != len(short)-1 {
		t.Fatalf("expected clamp to %d, got %d", len(short)-1, got)
	}
	if got := ClampIndex(-2, short); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := ClampIndex(1, short); got != 1 {
		t.Fatalf("in-range index must not move, got %d", got)
	}
}

func TestAdvanceStopsAtFinalStep(t *testing.T) {
	t.Parallel()

	steps := VisibleSteps(DerivedStoreConfig{}, false)

	next, err := Advance(0, steps)
	if err != nil || next != 1 {
		t.Fatalf("expected advance to 1, got %d err=%v", next, err)
	}

	_, err = Advance(len(steps)-1, steps)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict at final step, got %v", err)
	}
}

func TestRetreatStopsAtFirstStep(t *testing.T) {
	t.Parallel()

	prev, err := Retreat(2)
	if err != nil || prev != 1 {
		t.Fatalf("expected retreat to 1, got %d err=%v", prev, err)
	}

	_, err = Retreat(0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict at first step, got %v", err)
	}
}

func TestJumpToOnlyRevisitsCompletedSteps(t *testing.T) {
	t.Parallel()

	steps := VisibleSteps(DerivedStoreConfig{NeedsPartnerships: true}, false)

	index, err := JumpTo(4, 1, steps)
	if err != nil || index != 1 {
		t.Fatalf("expected backward jump to 1, got %d err=%v", index, err)
	}

	if _, err := JumpTo(2, 4, steps); err == nil {
		t.Fatalf("skipping ahead must be rejected")
	}
	if _, err := JumpTo(2, 2, steps); err == nil {
		t.Fatalf("jumping to the current step must be rejected")
	}
	if _, err := JumpTo(2, len(steps), steps); err == nil {
		t.Fatalf("out-of-range target must be rejected")
	}
}

func TestStepAtDefaultsToBasics(t *testing.T) {
	t.Parallel()

	if got := StepAt(3, nil); got != enums.WizardStepBasics {
		t.Fatalf("empty list should default to basics, got %s", got)
	}

	steps := VisibleSteps(DerivedStoreConfig{}, false)
	if got := StepAt(99, steps); got != steps[len(steps)-1] {
		t.Fatalf("overflow index should clamp to last step, got %s", got)
	}
}

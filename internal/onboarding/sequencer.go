package onboarding

import (
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
)

// stepDescriptor tags a candidate step with its visibility predicate. The
// candidate order is fixed; the effective list filters it per configuration.
type stepDescriptor struct {
	step    enums.WizardStep
	visible func(cfg DerivedStoreConfig, hasExistingPartnerships bool) bool
}

func alwaysVisible(DerivedStoreConfig, bool) bool { return true }

var candidateSteps = []stepDescriptor{
	{step: enums.WizardStepBasics, visible: alwaysVisible},
	{step: enums.WizardStepLocation, visible: alwaysVisible},
	{step: enums.WizardStepPartnership, visible: func(cfg DerivedStoreConfig, hasExisting bool) bool {
		return cfg.NeedsPartnerships || hasExisting
	}},
	{step: enums.WizardStepPolicies, visible: alwaysVisible},
	{step: enums.WizardStepBranding, visible: alwaysVisible},
	{step: enums.WizardStepReview, visible: alwaysVisible},
}

// VisibleSteps returns the effective ordered step list for the configuration.
func VisibleSteps(cfg DerivedStoreConfig, hasExistingPartnerships bool) []enums.WizardStep {
	steps := make([]enums.WizardStep, 0, len(candidateSteps))
	for _, descriptor := range candidateSteps {
		if descriptor.visible(cfg, hasExistingPartnerships) {
			steps = append(steps, descriptor.step)
		}
	}
	return steps
}

// ClampIndex pins an index into the bounds of the effective step list. Used
// after a re-derivation shrinks or grows the list.
func ClampIndex(index int, steps []enums.WizardStep) int {
	if index < 0 {
		return 0
	}
	if index >= len(steps) {
		return len(steps) - 1
	}
	return index
}

// Advance moves to the next step. The caller is responsible for having run
// the current step's validation and persistence first.
func Advance(index int, steps []enums.WizardStep) (int, error) {
	if index >= len(steps)-1 {
		return index, pkgerrors.New(pkgerrors.CodeStateConflict, "already at the final step")
	}
	return index + 1, nil
}

// Retreat moves to the previous step without requiring validation.
func Retreat(index int) (int, error) {
	if index <= 0 {
		return index, pkgerrors.New(pkgerrors.CodeStateConflict, "already at the first step")
	}
	return index - 1, nil
}

// JumpTo revisits a completed step. Skipping ahead is never legal.
func JumpTo(current, target int, steps []enums.WizardStep) (int, error) {
	if target < 0 || target >= len(steps) {
		return current, pkgerrors.New(pkgerrors.CodeValidation, "step index out of range")
	}
	if target >= current {
		return current, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot skip ahead to an uncompleted step")
	}
	return target, nil
}

// StepAt returns the step at the index, defaulting to basics when the list is
// empty.
func StepAt(index int, steps []enums.WizardStep) enums.WizardStep {
	if len(steps) == 0 {
		return enums.WizardStepBasics
	}
	return steps[ClampIndex(index, steps)]
}

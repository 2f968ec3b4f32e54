package enums

import "fmt"

// WizardStep identifies one screen of the store setup wizard.
type WizardStep string

const (
	WizardStepBasics      WizardStep = "basics"
	WizardStepLocation    WizardStep = "location"
	WizardStepPartnership WizardStep = "partnership"
	WizardStepPolicies    WizardStep = "policies"
	WizardStepBranding    WizardStep = "branding"
	WizardStepReview      WizardStep = "review"
)

var validWizardSteps = []WizardStep{
	WizardStepBasics,
	WizardStepLocation,
	WizardStepPartnership,
	WizardStepPolicies,
	WizardStepBranding,
	WizardStepReview,
}

// String implements fmt.Stringer.
func (s WizardStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known WizardStep.
func (s WizardStep) IsValid() bool {
	for _, candidate := range validWizardSteps {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWizardStep converts raw input into a WizardStep.
func ParseWizardStep(value string) (WizardStep, error) {
	for _, candidate := range validWizardSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wizard step %q", value)
}

package enums

import "fmt"

// StoreType is derived from the merchant's category answers during setup.
type StoreType string

const (
	StoreTypeIndependent StoreType = "independent"
	StoreTypeProducer    StoreType = "producer"
	StoreTypeProcessor   StoreType = "processor"
	StoreTypeHybrid      StoreType = "hybrid"
)

var validStoreTypes = []StoreType{
	StoreTypeIndependent,
	StoreTypeProducer,
	StoreTypeProcessor,
	StoreTypeHybrid,
}

// String implements fmt.Stringer.
func (s StoreType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreType.
func (s StoreType) IsValid() bool {
	for _, candidate := range validStoreTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStoreType converts raw input into a StoreType.
func ParseStoreType(value string) (StoreType, error) {
	for _, candidate := range validStoreTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store type %q", value)
}

// SubmissionStatus tracks a store's review lifecycle after final submission.
type SubmissionStatus string

const (
	SubmissionStatusDraft       SubmissionStatus = "draft"
	SubmissionStatusUnderReview SubmissionStatus = "under_review"
	SubmissionStatusApproved    SubmissionStatus = "approved"
	SubmissionStatusRejected    SubmissionStatus = "rejected"
)

var validSubmissionStatuses = []SubmissionStatus{
	SubmissionStatusDraft,
	SubmissionStatusUnderReview,
	SubmissionStatusApproved,
	SubmissionStatusRejected,
}

// String implements fmt.Stringer.
func (s SubmissionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubmissionStatus.
func (s SubmissionStatus) IsValid() bool {
	for _, candidate := range validSubmissionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// SellingMethod describes how a store fulfills orders.
type SellingMethod string

const (
	SellingMethodPickup        SellingMethod = "pickup"
	SellingMethodLocalDelivery SellingMethod = "local_delivery"
)

var validSellingMethods = []SellingMethod{
	SellingMethodPickup,
	SellingMethodLocalDelivery,
}

// String implements fmt.Stringer.
func (s SellingMethod) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SellingMethod.
func (s SellingMethod) IsValid() bool {
	for _, candidate := range validSellingMethods {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSellingMethod converts raw input into a SellingMethod.
func ParseSellingMethod(value string) (SellingMethod, error) {
	for _, candidate := range validSellingMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid selling method %q", value)
}

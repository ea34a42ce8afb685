package httperr

import "errors"

// Admission failure codes. Handlers map these to HTTP statuses; see the
// Write helpers in httperr.go.
const (
	CodeInvalidReference       = "invalid_reference"
	CodeOutsideAvailability    = "outside_availability"
	CodePastSlot               = "past_slot"
	CodeSlotConflict           = "slot_conflict"
	CodePersistenceUnavailable = "persistence_unavailable"
	CodeRewardNotAvailable     = "reward_not_available"
	CodeInvalidState           = "invalid_state"
)

type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// BusinessCode extracts the code from a BusinessError, or "" when err is
// not one.
func BusinessCode(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/salonware/booking-api/internal/httperr"
)

// ======================================================
// BOOKING ERROR → HTTP STATUS
// ======================================================

// mapBookingError converts a use-case failure into the HTTP response.
// Business codes keep their code string on the wire; anything else is
// reported as the persistence layer being unavailable, since the use
// cases only bubble raw errors out of the repository.
func mapBookingError(c *gin.Context, err error) {
	switch code := httperr.BusinessCode(err); code {

	case httperr.CodeInvalidReference:
		httperr.NotFound(c, code, "Salon, professional or service not found.")

	case httperr.CodeSlotConflict:
		httperr.Conflict(c, code, "The requested slot was just taken.")

	case httperr.CodePastSlot:
		httperr.Unprocessable(c, code, "The requested time is in the past or too close.")

	case httperr.CodeOutsideAvailability:
		httperr.Unprocessable(c, code, "The requested time is outside the professional's availability.")

	case httperr.CodeRewardNotAvailable:
		httperr.Unprocessable(c, code, "No loyalty reward available for this client.")

	case httperr.CodeInvalidState:
		httperr.Unprocessable(c, code, "The appointment does not allow this transition.")

	case "invalid_date_or_time":
		httperr.Unprocessable(c, code, "Date must be YYYY-MM-DD and time HH:MM.")

	case "invalid_phone":
		httperr.Unprocessable(c, code, "Client phone must have 8 to 15 digits.")

	case "":
		httperr.Unavailable(c, httperr.CodePersistenceUnavailable, "Could not reach the booking store. Try again.")

	default:
		httperr.Unprocessable(c, code, "The request could not be processed.")
	}
}

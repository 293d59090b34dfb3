package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

// Respond writes err as a business error when it carries a code, or as an
// internal error under fallbackCode otherwise.
func Respond(c *gin.Context, err error, fallbackCode string) {
	if code, ok := AsBusiness(err); ok {
		msg, ok := messages[code]
		if !ok {
			msg = code
		}
		Write(c, StatusFor(code), code, msg)
		return
	}

	zap.L().Error(fallbackCode,
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("requestID")),
	)
	Internal(c, fallbackCode, "Unexpected error.")
}

var messages = map[string]string{
	"appointment_not_found":  "Appointment not found.",
	"barber_not_found":       "Barber not found.",
	"service_not_found":      "Service not found.",
	"product_not_found":      "Product not found.",
	"user_not_found":         "User not found.",
	"blocked_slot_not_found": "Blocked slot not found.",
	"time_conflict":          "The slot is already taken.",
	"slot_blocked":           "The slot is blocked.",
	"username_taken":         "Username is already taken.",
	"email_taken":            "Email is already in use.",
	"name_taken":             "Name is already in use.",
	"forbidden":              "Not allowed.",
	"invalid_credentials":    "Invalid username or password.",
	"invalid_state":          "Appointment cannot change from its current status.",
	"invalid_status":         "Unknown or disallowed status.",
	"invalid_date":           "Invalid date.",
	"invalid_time":           "Invalid time.",
	"invalid_date_or_time":   "Invalid date or time.",
	"invalid_time_range":     "End time must be after start time.",
	"services_required":      "At least one service is required.",
	"contact_required":       "A phone number or email is required.",
	"no_rewards_available":   "No loyalty reward available.",
	"reward_not_applicable":  "The reward applies only to a Coupe + Barbe service.",
	"reward_already_used":    "The reward earned by this appointment has already been used.",
	"storage_disabled":       "Photo storage is not configured.",
	"invalid_image":          "The uploaded file is not a supported image.",
	"invalid_weekday":        "Weekdays must be 0 to 6 and unique.",
	"invalid_price":          "Price cannot be negative.",
	"invalid_duration":       "Duration cannot be negative.",
	"name_required":          "A name is required.",
	"already_exists":         "The record already exists.",
	"password_too_long":      "The password must be at most 72 bytes.",
	"admin_signup_disabled":  "Admin accounts cannot be created by signup.",
	"invalid_email_domain":   "The email domain does not accept mail.",
	"invalid_push_endpoint":  "The push endpoint must be an https URL.",
	"invalid_push_keys":      "The push subscription keys are missing.",
}

package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrInvalidRange   ErrCode = "INVALID_RANGE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrRouteNotFound ErrCode = "ROUTE_NOT_FOUND"

	// ─── Booking rules ─────────────────────────────────────────────────
	ErrInvalidDate      ErrCode = "INVALID_DATE"
	ErrOutOfRange       ErrCode = "OUT_OF_RANGE"
	ErrNoInstance       ErrCode = "NO_INSTANCE"
	ErrCapacityExceeded ErrCode = "CAPACITY_EXCEEDED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal           ErrCode = "INTERNAL_ERROR"
	ErrServiceUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidRange:
		return "End date must not be before start date."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrRouteNotFound:
		return "Route not found."

	// ─── Booking rules ─────────────────────────────────────────────────
	case ErrInvalidDate:
		return "Participation date must not be in the past."
	case ErrOutOfRange:
		return "Participation date is outside the class schedule."
	case ErrNoInstance:
		return "The class does not run on the requested date."
	case ErrCapacityExceeded:
		return "The class is fully booked for the requested date."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	case ErrServiceUnavailable:
		return "Service is temporarily unavailable."
	default:
		return "An unexpected error occurred."
	}
}

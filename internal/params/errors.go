package params

// Reason classifies why a configuration write was rejected
type Reason string

const (
	ReasonUnknownParameter Reason = "unknown_parameter"
	ReasonTypeError        Reason = "type_error"
	ReasonRangeError       Reason = "range_error"
	ReasonLengthError      Reason = "length_error"
	ReasonEnumError        Reason = "enum_error"
)

// ValidationError is returned when a raw value fails schema validation.
// A failed write never mutates stored state.
type ValidationError struct {
	Key     string
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

package source

type (
	// Result describes the status of a depth sensor driver operation.
	Result uint32

	// ResultError is a result that encodes an error.
	ResultError struct {
		Result
	}
)

// The set of possible results.
const (
	ResultOk Result = iota
	ResultNoDevice
	ResultTimeout
	ResultInvalidData
	ResultClosed
)

// Failed returns an error if the result is that of a failure.
func (r Result) Failed() error {
	if r == ResultOk {
		return nil
	}
	return ResultError{r}
}

// String returns a human readable version of a result.
func (r Result) String() string {
	switch r {
	case ResultOk:
		return "Ok"
	case ResultNoDevice:
		return "NoDevice"
	case ResultTimeout:
		return "Timeout"
	case ResultInvalidData:
		return "InvalidData"
	case ResultClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Error returns the error as a human readable string.
func (r ResultError) Error() string {
	return r.String()
}

package forecast

import (
	"errors"
	"fmt"

	"retailforecast/models"
)

var (
	// ErrInsufficientData is returned when an estimate is requested over zero records.
	ErrInsufficientData = errors.New("no historical data")
	// ErrZeroAverage is returned when the historical mean revenue is zero,
	// which leaves the seasonal ratio undefined.
	ErrZeroAverage = errors.New("historical average revenue is zero")
	// ErrMalformedRecord is wrapped by every RecordError.
	ErrMalformedRecord = errors.New("malformed sale record")
	// ErrUnknownGranularity is returned for a period granularity other than month, quarter or year.
	ErrUnknownGranularity = errors.New("unknown period granularity")
)

// RecordError reports which input record broke the data contract.
type RecordError struct {
	Index  int
	ID     string
	Reason string
}

func (e *RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("sale record %d (%s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("sale record %d: %s", e.Index, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// validate checks the fields the engine relies on.
func validate(records []models.SaleRecord) error {
	for i, r := range records {
		if r.SaleDate.IsZero() {
			return &RecordError{Index: i, ID: r.ID, Reason: "missing sale date"}
		}
		if r.TotalAmount.IsNegative() {
			return &RecordError{Index: i, ID: r.ID, Reason: fmt.Sprintf("negative total amount %s", r.TotalAmount)}
		}
	}
	return nil
}

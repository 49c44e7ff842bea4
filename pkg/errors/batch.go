package errors

import "net/http"

// EntryFailure identifies a single rejected entry within a batch submission.
type EntryFailure struct {
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

// NewBatch builds a validation error enumerating every failing batch entry.
// The caller receives the complete failure set in one response rather than
// discovering bad rows one request at a time.
func NewBatch(message string, failures []EntryFailure) *Error {
	return &Error{
		Code:    "BATCH_REJECTED",
		Status:  http.StatusUnprocessableEntity,
		Message: message,
		Details: failures,
	}
}

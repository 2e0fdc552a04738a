package internal

const (
	// ErrCodeUnknown is the error code for unknown errors
	ErrCodeUnknown = "UNKNOWN_ERROR"
	// ErrCodeRepoError is returned when the request to a repo fails with an error
	ErrCodeRepoError = "STORAGE_QUERY_FAILED"
	// ErrCodeRequiredFieldMissing is returned when at least one required field has not been populated on an incoming
	// request
	ErrCodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	// ErrCodeIllegalJSON is returned when the request did not contain a valid JSON body
	ErrCodeIllegalJSON = "ILLEGAL_JSON_REQUEST"
	// ErrCodeIllegalValue is returned when any field in the transferred data does not validate for some reason
	ErrCodeIllegalValue = "ILLEGAL_VALUE"
	// ErrCodeSongNotFound is returned when a referenced catalog song does not exist
	ErrCodeSongNotFound = "SONG_NOT_FOUND"
	// ErrCodeRequestNotFound is returned when an operation works on a song request that does not exist
	ErrCodeRequestNotFound = "REQUEST_NOT_FOUND"
	// ErrCodeQuotaExceeded is returned when a device requests more than the allowed number of songs
	ErrCodeQuotaExceeded = "QUOTA_EXCEEDED"
	// ErrCodeDuplicateRequestsNotAllowed is returned when duplicate requests are disabled and a guest wishes for a
	// song that is already in the queue
	ErrCodeDuplicateRequestsNotAllowed = "NO_DUPLICATE_REQUESTS"
	// ErrCodeReorderMismatch is returned when a queue reorder does not contain exactly the IDs of the current queue
	ErrCodeReorderMismatch = "REORDER_MISMATCH"
	// ErrCodePollNotFound is returned when an operation works on a poll that does not exist
	ErrCodePollNotFound = "POLL_NOT_FOUND"
	// ErrCodePollClosed is returned when a vote is cast on a poll that no longer accepts votes
	ErrCodePollClosed = "POLL_CLOSED"
	// ErrCodeInvalidPollOption is returned when a vote names an option the poll does not have
	ErrCodeInvalidPollOption = "INVALID_POLL_OPTION"
	// ErrCodeAlreadyVoted is returned when a device casts a second vote on the same poll
	ErrCodeAlreadyVoted = "ALREADY_VOTED"
	// ErrCodeNotEnoughOptions is returned when a poll is created with less than two distinct answer options
	ErrCodeNotEnoughOptions = "NOT_ENOUGH_OPTIONS"
	// ErrCodeLoginFailed is returned when the admin PIN does not match
	ErrCodeLoginFailed = "LOGIN_FAILED"
	// ErrCodeNotLoggedIn is returned when an admin API is accessed without an authenticated session
	ErrCodeNotLoggedIn = "NOT_LOGGED_IN"
)

// HTTPError is an error that contains information about the error message to return to the client
type HTTPError struct {
	message string
	code    string
	status  int
	data    interface{}
}

// MakeError creates a new HTTPError with the given contents
func MakeError(status int, code, message string) *HTTPError {
	return MakeErrorWithData(status, code, message, nil)
}

// MakeErrorWithData creates a new HTTPError with the given contents and an additional data element
func MakeErrorWithData(status int, code, message string, data interface{}) *HTTPError {
	return &HTTPError{message, code, status, data}
}

// Error implements the errorer interface
func (e *HTTPError) Error() string {
	return e.message
}

// Status returns the HTTP status that should be returned
func (e *HTTPError) Status() int {
	return e.status
}

// ErrorCode returns the machine-readable error code
func (e *HTTPError) ErrorCode() string {
	return e.code
}

// Data returns additional data about the error
func (e *HTTPError) Data() interface{} {
	return e.data
}

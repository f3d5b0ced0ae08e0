package fetchq

// Response holds the outcome of a successfully completed [Request].
//
// A Response is produced exactly once per request that completes an HTTP
// exchange, regardless of status code: a 500 from the server is still a
// Response, not an error. Errors are reserved for exchanges that never
// produced a status (see [TransportError], [ErrRequestCancelled],
// [ErrRequestTimeout]).
type Response struct {
	// BaseRequest is the originating request, returned unchanged so the
	// caller can correlate the outcome with what it submitted.
	BaseRequest Request

	// Body contains the HTTP response body. It may be truncated at the
	// transport's configured size cap.
	Body []byte

	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	StatusCode int
}

package domain

// FetchOutcome classifies why an outbound HTTP call did or did not produce a
// usable response. The resolution engines branch on this instead of on errors:
// a failed fetch is a routine signal to try the next strategy, never a failure
// to propagate to the caller.
type FetchOutcome string

const (
	// FetchOK means a success status with the expected content class.
	FetchOK FetchOutcome = "ok"

	// FetchNetworkError means the request itself failed (dial, DNS, timeout).
	FetchNetworkError FetchOutcome = "network_error"

	// FetchBadStatus means the server answered with a non-success status.
	FetchBadStatus FetchOutcome = "bad_status"

	// FetchWrongContentType means the response was not of the expected
	// content class (an HTML error page where an image was expected, etc).
	FetchWrongContentType FetchOutcome = "wrong_content_type"
)

// FetchResult is the explicit result of one outbound HTTP call. FinalURL is
// the URL after redirects; Body is only populated by calls that download
// content.
type FetchResult struct {
	Outcome     FetchOutcome
	StatusCode  int
	FinalURL    string
	ContentType string
	Body        []byte
}

// OK reports whether the call produced a usable response.
func (r *FetchResult) OK() bool {
	return r != nil && r.Outcome == FetchOK
}

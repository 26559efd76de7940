package scoring

import (
	"fmt"
	"strings"
)

const maxErrorBody = 512

// HTTPError is the cause attached to external service errors for non-2xx replies.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "scoring http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("scoring http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("scoring http error: status=%d body=%s", e.StatusCode, e.Body)
}

func parseHTTPError(status int, raw []byte) *HTTPError {
	body := strings.TrimSpace(string(raw))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return &HTTPError{StatusCode: status, Body: body}
}

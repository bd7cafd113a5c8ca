// Package friendly turns classified fetch failures into the single
// human-readable line shown to the user. No stack traces, no wrapped chains.
package friendly

import (
	"errors"
	"fmt"

	"imgfetch/internal/fetcher"
)

// Render produces the one-line message for err, with a short suggestion
// where one helps.
func Render(err error) string {
	if err == nil {
		return ""
	}
	switch fetcher.KindOf(err) {
	case fetcher.KindHTTPStatus:
		return fmt.Sprintf("HTTP error while fetching (status %d). The resource may have moved or require access.", fetcher.StatusCodeOf(err))
	case fetcher.KindTimeout:
		return "The request timed out. Please try again or check your connection."
	case fetcher.KindConnection:
		return "A connection error occurred. Check your internet connection and the URL."
	case fetcher.KindNetwork:
		return fmt.Sprintf("Network error: %v", cause(err))
	case fetcher.KindFilesystem:
		return fmt.Sprintf("File error while saving: %v", cause(err))
	default:
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
}

// cause strips the classification prefix so the detail reads naturally.
func cause(err error) error {
	var fe *fetcher.Error
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err
	}
	return err
}

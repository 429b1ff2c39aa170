package lrsynclib

import (
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ConfigurationError means the invocation itself is unusable. It is
// returned before any network or filesystem activity.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// FetchError means the gallery listing could not be retrieved, either
// because the gallery URL is malformed or because the listing endpoint
// answered with a non-success status.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DownloadError is a per-asset transfer failure.
type DownloadError struct {
	Filename string
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download error for %s: %v", e.Filename, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// IOError is a local filesystem failure.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error for %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// AuthError means credentials are missing, unreadable or rejected.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "auth error: " + e.Reason
	}
	return fmt.Sprintf("auth error: %s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UploadError is a destination API rejection.
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload error for %s: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// wrapAPIError classifies a Google API failure. Credential rejections
// surface as AuthError, everything else as UploadError.
func wrapAPIError(err error, filename string) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Reason: "request rejected by the API", Err: err}
		}
	}
	return &UploadError{Filename: filename, Err: err}
}

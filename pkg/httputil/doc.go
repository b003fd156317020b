// Package httputil provides HTTP helpers shared by the backend client.
//
// # Retry
//
// [Retry] runs an operation with exponential backoff. Only errors wrapped in
// [RetryableError] are retried; everything else returns immediately:
//
//	err := httputil.Retry(ctx, httputil.DefaultBackoff, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    return httputil.CheckStatus(resp.StatusCode)
//	})
//
// # Status codes
//
// [CheckStatus] maps HTTP status codes onto structured errors from
// pkg/errors: 401 and 403 become ErrCodeUnauthorized, 404 ErrCodeNotFound,
// and 5xx or 429 are marked retryable. [StatusFor] goes the other way for
// the preview server.
//
// # Request IDs
//
// [NewRequestID] returns a random UUID for the X-Request-ID header so that
// backend logs can be correlated with client logs.
package httputil

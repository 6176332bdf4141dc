// Package httputil provides the HTTP plumbing shared by the HTTP snapshot
// source and the portrait loader.
//
// # Overview
//
//   - [Client]: GET requests with default headers, status mapping and a
//     read-through cache backed by [cache.Cache]
//   - [Retry]: automatic retry with exponential backoff
//
// # Errors
//
// Responses map onto coded errors from pkg/errors: 404 becomes NOT_FOUND,
// 5xx and transport failures become NETWORK_ERROR wrapped in a
// [RetryableError], and any other non-200 status is a plain NETWORK_ERROR.
//
// # Retry
//
// [Retry] only retries errors wrapped with [RetryableError]:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.Get(ctx, url, &snap)
//	})
//
// Default settings: 3 attempts, 1 second initial delay doubling each retry.
package httputil

// Package client talks to the microblog REST backend.
//
// # Overview
//
// Client is the transport-agnostic contract, one method per backend
// endpoint. HTTPClient implements it over net/http: JSON bodies, a
// form-encoded token request, multipart uploads and a bearer token taken from
// a TokenSource on every call except token issuance.
//
// # Error Handling
//
// Every non-2xx response becomes an *APIError carrying the status code and the
// backend's "detail" message. APIError unwraps to a sentinel so callers can
// use errors.Is: ErrUnauthorized (401), ErrNotFound (404), ErrServer (5xx).
// Transport failures wrap ErrUnavailable.
//
// A 401 on a request made with the session token also fires the
// OnUnauthorized hook, which the application uses to force a logout.
//
// Claims decodes the bearer token without verifying it, for display only.
package client

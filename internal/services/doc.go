// Package services implements the HTTP client for the Resonate music API.
//
// # Client
//
// [Client] has one method per read or write operation. Each method builds the request (escaped path
// identifiers, query string, JSON body), attaches identity when the operation needs it and normalizes
// the JSON payload into the types in the models package.
//
// Identity is explicit: user-scoped methods take the uid and send it as the X-User-Id header.
// VIP upgrade sends the session token as an Authorization: Bearer credential.
// Every request carries a fresh X-Request-Id for log correlation and waits on a client-side rate limiter.
//
// # Payload handling
//
// Bodies are parsed defensively. An empty or non-JSON body is an empty object, a non-array list field
// is an empty list and a malformed number falls back to a default. Ids may arrive as JSON numbers or
// strings and are always surfaced as strings.
//
// # Errors
//
// Every failure is a [RequestError]:
//   - [NetworkError]: no HTTP response (connection refused, timeout, canceled context)
//   - [HTTPError]: non-2xx status, or a 2xx body with an "error" field
//   - [ValidationError]: rejected client-side before sending (e.g. "Login required", "Select a playlist")
//
// The message is the server's "error" string when present and a per-operation fallback otherwise
// (e.g. "Failed to load results"). [errors.Is] maps the kinds to [shared.ErrNetwork],
// [shared.ErrAPIRequest] and [shared.ErrInvalidInput].
//
// # Raw access
//
// [Client.Get] and [Client.Post] return the undecoded [APIResponse] for debugging from the CLI.
package services

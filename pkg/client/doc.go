// Package client talks to the MLM backend's tree and login endpoints.
//
// # Authentication
//
// Requests carry the bearer token of an explicit [session.Credential] passed
// with [WithCredential]. Without a token the client returns [ErrNotLoggedIn]
// and does not touch the network.
//
// # Errors
//
//   - a success=false envelope yields an error matching [ErrBackend] that
//     wraps *errors.BackendError with the backend's message
//   - 401 and 403 yield errors.ErrCodeUnauthorized
//   - 5xx, 429 and transport failures are retried with exponential backoff
//   - undecodable bodies yield errors.ErrCodeMalformed
//
// # Usage
//
//	c, err := client.New("https://api.example.com", client.WithCredential(cred))
//	root, stats, err := c.FetchTree(ctx, tree.KindUser)
package client

// Package client is the session client for an AT Protocol PDS.
//
// # Overview
//
// XRPCClient implements SessionClient against the two XRPC procedures a
// credential keeper needs:
//
//	POST /xrpc/com.atproto.server.createSession   {identifier, password}
//	POST /xrpc/com.atproto.server.refreshSession  Authorization: Bearer <refreshJwt>
//
// Server URLs go through NormalizeServerURL, which only admits https.
//
// # Error Handling
//
// Every failure is a *common.Error whose kind can be matched with errors.Is:
//
//   - common.ErrInvalidCredentials: createSession answered 401
//   - common.ErrTokenExpired:       refreshSession answered 401
//   - common.ErrServer:             5xx, any other refresh failure, or an unreadable body
//   - common.ErrNetwork:            transport failures and timeouts
//   - common.ErrUnknown:            other non-2xx from createSession
//
// # Retries
//
// The *WithRetry variants retry network failures only, following Policy
// (three attempts with 1s and 2s waits by default). Waits honor ctx.
package client

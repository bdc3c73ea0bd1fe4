// Package auth provides stateless bearer token authentication: HS256 token
// issuance and verification, a per request authentication gate, and the
// login and registration flows behind the /auth HTTP endpoints.
//
// Tokens:
//   - TokenService mints tokens whose subject is the username, with auth_id,
//     authorities, jti, iat and exp claims. Validate reports failures as one
//     of ErrTokenMalformed, ErrTokenInvalidSignature or ErrTokenExpired.
//   - ClaimsDecorator may extend authorities before signing; protected
//     claims are checked after decoration.
//
// Gate:
//   - Gate.Decide classifies a request as Skip (preflight or public route),
//     Anonymous or Authenticated. It never rejects; route guards in
//     middleware/jwtware turn a missing or insufficient principal into 401 or
//     403.
//   - Authorities come from the credential store on every request, so role
//     changes apply to tokens already issued.
//
// Activity sinks:
//   - ActivitySink receives login and registration events. Sinks run best
//     effort (errors are logged) so they never block authentication.
package auth

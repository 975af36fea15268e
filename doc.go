// Package identity implements the credential lifecycle of a web facing
// identity service: account activation, login time token issuance, and
// password recovery.
//
// Workflow:
//   - Workflow is the entry point. It composes a CredentialStore, a
//     RoleStore, a ProfileStore, and a MailSender behind one constructor
//     that validates its configuration up front. Each operation is a
//     stateless request handler safe for concurrent use.
//   - One-time codes (activation and password recovery) are consumed with
//     atomic find-and-invalidate semantics at the store, so concurrent
//     redemptions of the same code resolve to at most one winner.
//
// Tokens:
//   - TokenBuilder mints signed HS256 JWTs with a fixed issuer, audience,
//     and validity window. Login issues two tokens from the same instant: a
//     full token carrying the flattened role claims and a lightweight token
//     without them. Tokens have no server side lifecycle; validity is a
//     function of signature and expiry alone.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter. Every operation records
//     a distinguishable success or failure event. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue without
//     blocking authentication.
package identity

// Package authgate implements the token-based authentication and
// authorization state machine behind a credential-protected API:
// signup, login, bearer token verification, role gating, and password
// recovery.
//
// Access tokens:
//   - Tokens are self-contained JWTs (HS256, process-wide key). There
//     is no session table and no revocation list: every verification
//     re-resolves the subject and compares the token's issue time
//     against the identity's password-change timestamp, so changing a
//     password retroactively invalidates every outstanding token.
//
// Verification gate:
//   - Auther.Authenticate runs the ordered checks (bearer extraction,
//     signature and TTL, subject resolution, password-change side
//     check) and yields an AuthContext. Authorize is a pure membership
//     test over the closed role set and must only see contexts the
//     gate produced.
//
// Password recovery:
//   - Reset tokens are high-entropy, single-use, and short-lived. Only
//     their sha256 digest is stored, paired with an expiry; the pair is
//     written and cleared atomically, and a failed email delivery rolls
//     the pair back so no token is live that nobody was told about.
//
// The CredentialStore and Mailer are narrow interfaces; a bun-backed
// store and an SMTP mailer ship as reference implementations.
package authgate

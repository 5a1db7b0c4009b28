// Package accounts is a thin REST facade over an external identity platform.
// It owns validation, authentication, and error normalization; all account
// records, password hashing, and token cryptography stay in the platform
// behind the IdentityService interface.
//
// Request pipeline:
//   - Every inbound call flows through a fixed hook chain: receive, log,
//     validate, authenticate, execute, normalize. Any stage failure skips
//     straight to normalization, so every error crosses the boundary with a
//     status, a stable kind, and a pre-declared message.
//   - Schemas live in a registry keyed by (resource, operation). Validation
//     is atomic: defaults are applied and unknown fields stripped only when
//     every field passes.
//
// Resources:
//   - accounts exposes the classic CRUD surface. New accounts start disabled
//     with an unverified email; listing accounts requires an admin claim.
//   - authentication mints custom tokens, issues out-of-band management
//     links, and revokes refresh tokens.
//   - documentation serves a static description of the API.
//
// Providers:
//   - provider/firebase adapts the Firebase Admin SDK for production.
//   - provider/memory keeps everything process-local for development and
//     tests.
package accounts

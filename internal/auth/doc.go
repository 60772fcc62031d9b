// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

// Package auth establishes the requester identity for API calls.
//
// Two modes are supported:
//
//	jwt   HS256 bearer tokens; the "sub" claim is the requester id
//	none  every request runs as a fixed anonymous requester (demo and tests)
//
// The middleware rejects missing or invalid credentials before any handler
// runs. The requester is then available from the request context:
//
//	subject, ok := auth.SubjectFromContext(r.Context())
//
// Environment Variables:
//
//	AUTH_MODE    jwt or none (default: jwt)
//	JWT_SECRET   HMAC secret, at least 32 characters in jwt mode
//	JWT_ISSUER   expected "iss" claim (default: kuchikomi)
//	TOKEN_TTL    lifetime of tokens issued by GenerateToken
package auth

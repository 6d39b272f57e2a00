// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package auth identifies the caller of every recommendation endpoint.

Two modes are supported:

  - jwt: an HS256 bearer token (Authorization header or "token" cookie)
    whose subject is the user ID and whose "role" claim carries the role.
  - none: development mode. The user ID is read from the X-User-ID header
    and the role from X-User-Role.

The resolved Principal is stored in the request context; downstream
handlers read it with PrincipalFromContext. Authorization decisions are
made by the authz package.
*/
package auth

// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package authz decides what an authenticated principal may do.

Decisions are made by a Casbin RBAC enforcer over (role, object, action)
triples. The model and policy are embedded; a deployment may override
either with a file. Two roles exist: "user" and "admin", and admin
inherits every user permission. The configured admin role name is
grouped onto "admin" so that tokens may carry a site-specific role.

Objects and actions:

	recommendations  read       list, A/B, similar content and users
	interactions     write      track-interaction
	cache            clear_own  DELETE /cache for the caller
	cache            clear_all  DELETE /cache for every user
	performance      read       GET /performance
	training         read|write GET /status, POST /train
	evaluation       write      POST /evaluate
*/
package authz

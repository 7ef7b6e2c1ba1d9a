// Package server exposes sessions over HTTP.
//
// Routes:
//
//	GET /                  the page with every choice and the result area
//	GET /api/v1/run        a whole session as JSON, figures base64-encoded
//	GET /plot/{view}.png   one figure
//	GET /health            uptime and cache statistics
//	GET /ws?session=<id>   progress events for a session
package server

// Package app runs a plotting session: it parses the user's choices,
// loads the strain around t0 and renders the requested views in page
// order, collecting the status messages shown between them.
package app

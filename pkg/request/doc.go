// Package request captures the per-request inputs a form lifecycle reads:
// the method, submitted fields, headers, environment and optional session
// data. Values are built explicitly (FromHTTP, New) and passed to the
// lifecycle instead of being read from process-wide state.
package request

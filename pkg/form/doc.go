// Package form runs the form request lifecycle.
//
// A concrete form implements Hooks. Run classifies the request: an initial
// request (GET) only renders; a submission (POST) is validated with IsValid
// and, when valid, processed by Business. Whatever view is current afterwards
// is displayed once. A form whose Business clears the view renders nothing,
// and a redirect raised from a hook ends the lifecycle without rendering.
//
// Handler adapts the lifecycle to net/http; the terminal transport in
// pkg/transport/terminal drives the same hooks from prompts.
package form

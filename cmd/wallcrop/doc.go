// Package main hosts the wallcrop CLI entrypoint and command graph.
//
// The Cobra-based command tree wires configuration, logging, the metadata
// store and the external tools together, then hands off to the pipeline,
// retrofit and editor packages. Keep this package lean: behaviour belongs in
// internal packages and is only surfaced here.
package main

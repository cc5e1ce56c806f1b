// Package tools wraps the external programs wallcrop drives: the WebP, JPEG
// and PNG optimizers, the upscaler and the crop editor.
//
// Every invocation goes through an Executor so tests can substitute a stub
// and never need the real binaries. A spawned process is always awaited;
// there are no timeouts.
package tools

// Package geometry holds the value types shared by the cropper, the metadata
// store and the editor session: crop rectangles, target aspect ratios, the
// axis a crop slides along, and face boxes reported by the detector.
//
// All types are immutable values. Alignment and movement helpers return new
// geometries and never read face data.
package geometry

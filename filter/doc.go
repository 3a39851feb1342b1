// Package filter implements the five standard PNG scanline filters and the
// adaptive per-row filter selection used by the parallel encoder.
//
// A filter transforms a raw scanline into a residual that deflate compresses
// better. Every filter predicts each byte from its decoded neighbors: the
// byte one pixel to the left (Sub), the byte directly above (Up), their mean
// (Average), or the Paeth edge predictor. Filtering is fully reversible; the
// Unfilter functions reconstruct raw bytes from residuals.
//
// The previous scanline is always the *raw* previous row. For the first row
// of an image (or when prev is nil) the previous row is defined as all
// zeroes, per the PNG specification.
//
// Selection is deterministic: the adaptive heuristic minimizes the sum of
// absolute residuals (each residual interpreted as a signed byte), and ties
// are broken by the fixed order None, Sub, Up, Average, Paeth.
package filter

// Package geometry models a compound's feasible region in the
// (nominal mass, mass defect) plane and classifies observations against it.
//
// What:
//
//   - Expander enumerates every combination of a compound's substitution
//     features and splits each summed mass into a FeaturePoint.
//   - Hull reduces the expanded point cloud to its convex hull, returned as a
//     counter-clockwise Region.
//   - Locate places an observation relative to a Region: strictly inside, on
//     the boundary, within a distance tolerance of an edge, or outside.
//
// Complexity:
//
//   - Expand: O(P×F) time and O(P) memory, where P = ∏(maxCount_i + 1) over
//     the F features. P grows multiplicatively and is the dominant cost of a
//     screening run; Expander.MaxPoints bounds it (0 disables the ceiling).
//   - Hull:   O(P log P) (Andrew's monotone chain).
//   - Locate: O(V) per observation for a hull of V vertices.
//
// Errors:
//
//   - core.ErrInvalidFeatureSpec: negative max count or non-finite increment.
//   - core.ErrExcessiveExpansion: P exceeds Expander.MaxPoints or overflows int.
//   - core.ErrDegenerateRegion: fewer than three distinct points, or all collinear.
package geometry

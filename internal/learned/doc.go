// Package learned persists human-confirmed content/preview pairs and mines
// them for rename rules.
//
// The backing file is a flat JSON array of objects carrying at least
// archive_basename and image_basename; any other keys are kept verbatim.
// Loading is best-effort: a missing or malformed file yields an empty list so
// pairing falls back to heuristics. A Snapshot freezes one Load for the
// duration of a scan batch; pairs appended mid-batch are seen by the next one.
package learned

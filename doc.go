// Package posealign turns two independently timed videos of a physical
// motion into one reproducible similarity measurement.
//
// 🚀 How it works:
//
//	Two uploads open a session. An external detector extracts per-frame
//	body landmarks from each video; the engine aligns the two landmark
//	time series with Dynamic Time Warping, normalizes the cumulative
//	distance by the warp path length, and maps it into a similarity
//	percentage. Results persist per session and stay retrievable until
//	a newer analysis completes.
//
// ✨ Everything is organized under five subpackages:
//
//	landmark/ — keypoint, frame and sequence types + the visibility-aware frame metric
//	dtw/      — the aligner: cost matrix, warp path, Sakoe–Chiba band, memory modes
//	score/    — bounded similarity mapping with documented monotonicity guarantees
//	session/  — the uuid-keyed store: artifacts, SQLite index, per-session locking
//	config/   — YAML configuration for the data dir, band width and metric policy
//
// cmd/posealign is the CLI surface; the pose detector itself is a
// capability behind session.Extractor and lives outside this module.
package posealign

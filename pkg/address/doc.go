// ABOUTME: Content-addressed file naming package
// ABOUTME: Derives "{bitrate}k.{channels}ch.{hash}" names from PCM payloads
// Package address computes the deterministic file-name component shared
// by the encoder and the runtime: a 64-bit hash of the interleaved PCM
// payload, combined with bitrate and channel count into the layout the
// runtime depends on to recover channel count before a file is fetched.
//
// No ecosystem hash library appears anywhere in this pipeline's
// dependency lineage (see DESIGN.md), so the hash itself is computed
// with the standard library's hash/fnv, which satisfies the spec's only
// requirement: a fast, deterministic, low-collision 64-bit digest.
package address

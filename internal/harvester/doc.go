// Package harvester implements the LDES crawl engine: frontier management,
// page and member deduplication, relation discovery, and resumable
// checkpointing.
package harvester

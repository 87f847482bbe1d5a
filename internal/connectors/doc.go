// Package connectors provides document sources for ingestion.
// Each connector knows how to read raw files from one kind of source;
// the filesystem connector reads and watches a local directory tree.
package connectors

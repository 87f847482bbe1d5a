// Package normalisers turns raw file bytes into documents ready for
// ingestion. Each normaliser handles specific MIME types; the Registry
// picks the highest-priority normaliser for a file.
//
// Normalisers are registered with the Registry at startup.
package normalisers

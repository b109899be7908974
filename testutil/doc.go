// Package testutil provides deterministic reflection-data fixtures for
// tests: seeded random generators and ready-made merged and unmerged
// datasets with realistic metadata.
package testutil

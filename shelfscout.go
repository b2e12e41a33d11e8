// Package shelfscout extracts product description content from e-commerce
// pages, learns how individual stores structure their catalogs, tracks
// extraction quality across runs, and maintains per-country proxy pools for
// the fetch layer.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, http/).
package shelfscout

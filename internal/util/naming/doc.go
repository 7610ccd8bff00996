// Package naming provides consistent naming functions for inventory records.
//
// Switches follow the pattern sw{site-number}-{index}, where the site number
// is the trailing digits of the site name and the index increases per site.
// Floors are named {site}-{floor}; their slugs spell negative floors as
// neg{n} so the slug never carries a minus sign.
package naming

// Strataprep - Stratified Train/Test Preparation for Rating Datasets
// Copyright 2026 Strataprep Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/strataprep/strataprep

package dataset

// FilterMinRatings drops records belonging to users with fewer than
// minUser rows or items with fewer than minItem rows. Counts are taken
// over the raw input in a single pass, then both thresholds are applied
// together; the filter does not re-count after dropping, so a user can
// end up below threshold when all their surviving items were rare. Values
// of 0 or 1 disable the corresponding axis.
//
// Runs before indexing so filtered identifiers never enter the maps.
func FilterMinRatings(records []Record, minUser, minItem int) []Record {
	if minUser <= 1 && minItem <= 1 {
		return records
	}

	userCounts := make(map[string]int)
	itemCounts := make(map[string]int)
	for _, rec := range records {
		userCounts[rec.User]++
		itemCounts[rec.Item]++
	}

	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		if minUser > 1 && userCounts[rec.User] < minUser {
			continue
		}
		if minItem > 1 && itemCounts[rec.Item] < minItem {
			continue
		}
		kept = append(kept, rec)
	}

	return kept
}

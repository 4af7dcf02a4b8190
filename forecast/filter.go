package forecast

import "retailforecast/models"

// FilterByItem returns the sales that contain at least one line for itemID,
// in their original order. It never returns nil.
func FilterByItem(records []models.SaleRecord, itemID string) []models.SaleRecord {
	out := make([]models.SaleRecord, 0)
	if itemID == "" {
		return out
	}
	for _, r := range records {
		if r.HasItem(itemID) {
			out = append(out, r)
		}
	}
	return out
}

package services

import "classdraw/internal/models"

// AvailablePrizes returns the prizes that still have stock, in catalog order.
func AvailablePrizes(prizes []models.Prize) []models.Prize {
	available := make([]models.Prize, 0, len(prizes))
	for _, p := range prizes {
		if p.Remaining > 0 {
			available = append(available, p)
		}
	}
	return available
}

// ApplyAward returns a copy of prizes with one unit of prizeID taken out.
// An unknown id, or a prize already at zero, leaves the copy unchanged.
func ApplyAward(prizes []models.Prize, prizeID int) []models.Prize {
	updated := make([]models.Prize, len(prizes))
	copy(updated, prizes)
	for i := range updated {
		if updated[i].ID == prizeID {
			if updated[i].Remaining > 0 {
				updated[i].Remaining--
			}
			break
		}
	}
	return updated
}

// findPrize returns the catalog entry with the given id.
func findPrize(prizes []models.Prize, prizeID int) (models.Prize, bool) {
	for _, p := range prizes {
		if p.ID == prizeID {
			return p, true
		}
	}
	return models.Prize{}, false
}

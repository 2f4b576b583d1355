package usecase

// SeatPriceCents applies a seat's integer percentage premium to a show's
// base price. Prices stay in minor units end to end; the division rounds
// half up so repeated quotes for the same seat and show always agree.
func SeatPriceCents(basePriceCents int64, premiumPercent int) int64 {
	return (basePriceCents*int64(100+premiumPercent) + 50) / 100
}

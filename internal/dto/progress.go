package dto

// WeekTotalsQuery optionally narrows group totals to one week.
type WeekTotalsQuery struct {
	Week *int `form:"week" binding:"omitempty,min=1"`
}

// PassStatsQuery carries an optional decimal threshold, e.g. "60" or "72.5".
type PassStatsQuery struct {
	Threshold *string `form:"threshold" binding:"omitempty,numeric"`
}

package model

// Derive fills HYIGDiff from the two spreads. It is cleared when either
// input is missing so a stale value never survives an edit.
func (c *CreditSpread) Derive() {
	if c.HYOAS == nil || c.IGBBBOAS == nil {
		c.HYIGDiff = nil
		return
	}
	diff := *c.HYOAS - *c.IGBBBOAS
	c.HYIGDiff = &diff
}

// Derive fills CapexOCFRatio and AdjDebtEquity. A ratio is nil when an
// input is missing or the denominator is zero.
func (h *HyperscalerMetric) Derive() {
	h.CapexOCFRatio = ratio(h.Capex, h.OperatingCF)
	h.AdjDebtEquity = ratio(h.TotalDebt, h.TotalEquity)
}

func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	r := *num / *den
	return &r
}

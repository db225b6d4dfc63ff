package domain

import (
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

// Commission is the platform's cut, computed on the commissionable amount:
// the subtotal excluding the government fee line and the tip.
type Commission struct {
	Rate                 float64 `json:"rate"`
	CommissionableAmount float64 `json:"commissionable_amount"`
	PlatformCommission   float64 `json:"platform_commission"`
	DriverEarnings       float64 `json:"driver_earnings"`
}

// Receipt is the immutable, auditable artifact built by Finalize and
// recorded exactly once per trip.
type Receipt struct {
	ratedomain.FareBreakdown

	TipPercent float64    `json:"tip_percent"`
	TipAmount  float64    `json:"tip_amount"`
	TotalFinal float64    `json:"total_final"`
	Commission Commission `json:"commission"`
}

// buildReceipt applies the tip and commission rules to a frozen breakdown.
// A positive custom tip wins over the percentage; the tip base is the
// subtotal, deliberately excluding the government fee. Rates are percentages
// (25 means 25%).
func buildReceipt(b ratedomain.FareBreakdown, tipPercent, customTip, commissionRate float64) Receipt {
	var tip float64
	switch {
	case customTip > 0:
		tip = customTip
		tipPercent = 0
	case tipPercent > 0:
		tip = b.Subtotal * (tipPercent / 100)
	}

	commissionable := b.Subtotal
	platformCut := commissionable * (commissionRate / 100)

	return Receipt{
		FareBreakdown: b,
		TipPercent:    tipPercent,
		TipAmount:     ratedomain.Round2(tip),
		TotalFinal:    ratedomain.Round2(b.TotalBeforeTip + tip),
		Commission: Commission{
			Rate:                 commissionRate,
			CommissionableAmount: ratedomain.Round2(commissionable),
			PlatformCommission:   ratedomain.Round2(platformCut),
			DriverEarnings:       ratedomain.Round2(commissionable - platformCut + tip),
		},
	}
}

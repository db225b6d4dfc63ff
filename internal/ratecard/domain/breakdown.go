package domain

// FareBreakdown is the presentation-rounded view of a fare at a point in
// time. It is a value type, produced fresh and never mutated in place.
//
// The government fee line is informational: it is already part of BaseFare,
// so Subtotal == BaseFare + DistanceCost + WaitingCost and TotalBeforeTip
// equals Subtotal. Every consumer, the estimator included, follows the
// embedded rule; the fee must never be added a second time.
type FareBreakdown struct {
	RatePeriod     Period  `json:"rate_period"`
	BaseFare       float64 `json:"base_fare"`
	DistanceKm     float64 `json:"distance_km"`
	DistanceCost   float64 `json:"distance_cost"`
	WaitingMinutes float64 `json:"waiting_minutes"`
	WaitingCost    float64 `json:"waiting_cost"`
	Subtotal       float64 `json:"subtotal"`
	GovernmentFee  float64 `json:"government_fee"`
	TotalBeforeTip float64 `json:"total_before_tip"`
}

// NewBreakdown assembles a breakdown from unrounded accumulators.
func NewBreakdown(rt RateTable, distanceKm, waitingMinutes float64) FareBreakdown {
	distanceCost := DistanceCost(rt, distanceKm)
	waitingCost := WaitingCost(rt, waitingMinutes)
	subtotal := rt.BaseFare + distanceCost + waitingCost

	return FareBreakdown{
		RatePeriod:     rt.Period,
		BaseFare:       Round2(rt.BaseFare),
		DistanceKm:     Round2(distanceKm),
		DistanceCost:   Round2(distanceCost),
		WaitingMinutes: Round1(waitingMinutes),
		WaitingCost:    Round2(waitingCost),
		Subtotal:       Round2(subtotal),
		GovernmentFee:  Round2(rt.GovernmentFee),
		TotalBeforeTip: Round2(subtotal),
	}
}

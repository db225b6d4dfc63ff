package gps

// Classification tells the meter how an interval is charged.
type Classification string

const (
	// Stationary: sub-jitter displacement. Elapsed time bills as waiting,
	// distance is discarded as GPS noise.
	Stationary Classification = "stationary"

	// Moving: at or above the speed threshold. Distance-only charge.
	Moving Classification = "moving"

	// WaitingWhileMoving: displacing below the threshold. Regulation bills
	// BOTH the distance and the elapsed time as waiting.
	WaitingWhileMoving Classification = "waiting_while_moving"
)

// Movements below this are treated as jitter, not motion.
const minMovementMeters = 3

// Classify measures the interval between two consecutive fixes and applies
// the charging policy, first match wins:
//
//  1. distance < 3 m            -> Stationary
//  2. speed >= threshold (km/h) -> Moving
//  3. otherwise                 -> WaitingWhileMoving
//
// A non-positive elapsed time returns ErrStaleInterval and a zero interval;
// callers drop it without charging anything.
func Classify(prev, cur Fix, speedThresholdKmh float64) (Interval, Classification, error) {
	if err := prev.Validate(); err != nil {
		return Interval{}, "", err
	}
	if err := cur.Validate(); err != nil {
		return Interval{}, "", err
	}

	elapsed := cur.Timestamp.Sub(prev.Timestamp).Seconds()
	if elapsed <= 0 {
		return Interval{}, "", ErrStaleInterval
	}

	distance := HaversineMeters(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)
	iv := Interval{
		DistanceMeters: distance,
		ElapsedSeconds: elapsed,
		SpeedKmh:       SpeedKmh(distance, elapsed),
	}

	switch {
	case distance < minMovementMeters:
		return iv, Stationary, nil
	case iv.SpeedKmh >= speedThresholdKmh:
		return iv, Moving, nil
	default:
		return iv, WaitingWhileMoving, nil
	}
}

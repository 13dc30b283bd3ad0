package ura

import "math"

// ETAMinutes is the whole number of minutes between the server time and a predicted
// arrival, both epoch milliseconds. Halves round away from zero and overdue arrivals stay negative.
func ETAMinutes(predicted float64, serverTime float64) int {
	return int(math.Round((predicted - serverTime) / 60000))
}

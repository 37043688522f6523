package entity

import "time"

// SufficiencyKey identifies one sufficiency evaluation stream.
type SufficiencyKey struct {
	AccountAddress string
	RouteID        string
}

// SufficiencySnapshot is the immutable result of one evaluation cycle.
type SufficiencySnapshot struct {
	Key         SufficiencyKey
	Results     []GasSufficiency
	EvaluatedAt time.Time
	Err         error
}

package scoring

import "github.com/google/uuid"

// DeltaResult carries the per-color score deltas returned by the scoring
// service. Deltas and ids of each list are index aligned.
type DeltaResult struct {
	DislikedDeltas []float64
	DislikedIDs    []uuid.UUID
	NeutralDeltas  []float64
	NeutralIDs     []uuid.UUID
}

// Len is the total number of (id, delta) pairs.
func (r DeltaResult) Len() int {
	return len(r.DislikedIDs) + len(r.NeutralIDs)
}

type pkRef struct {
	PK uuid.UUID `json:"pk"`
}

type deltaRequest struct {
	DislikedProductColors []pkRef `json:"disliked_product_colors"`
	NeutralProductColors  []pkRef `json:"neutral_product_colors"`
}

type deltaResponse struct {
	DislikedDelta []float64   `json:"disliked_delta"`
	DislikedPK    []uuid.UUID `json:"disliked_pk"`
	NeutralDelta  []float64   `json:"neutral_delta"`
	NeutralPK     []uuid.UUID `json:"neutral_pk"`
}

func newDeltaRequest(disliked, neutral []uuid.UUID) deltaRequest {
	req := deltaRequest{
		DislikedProductColors: make([]pkRef, 0, len(disliked)),
		NeutralProductColors:  make([]pkRef, 0, len(neutral)),
	}
	for _, id := range disliked {
		req.DislikedProductColors = append(req.DislikedProductColors, pkRef{PK: id})
	}
	for _, id := range neutral {
		req.NeutralProductColors = append(req.NeutralProductColors, pkRef{PK: id})
	}
	return req
}

package tagging

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/phantomos-app/phantomos-backend/pkg/types"
)

// floorSingle and floorBatch are the minimum confidences a suggestion must
// claim to survive the gate. Batch runs feed auto-tagging, so the bar is
// higher.
const (
	floorSingle = 50
	floorBatch  = 60
)

// validateSuggestions is the gate between model output and anything the rest
// of the system trusts. A suggestion survives only if its asset id is in the
// candidate set, its name is present, and its confidence is numeric and at
// or above the floor. The floor applies to the raw value, so a 49.5 never
// rounds its way past a floor of 50; survivors are then clamped to [0,100]
// and rounded. The returned discarded count feeds metrics.
func validateSuggestions(raw []rawSuggestion, candidates map[uuid.UUID]Candidate, floor int) ([]types.TagSuggestion, int) {
	out := []types.TagSuggestion{}
	discarded := 0
	for _, r := range raw {
		assetID, err := uuid.Parse(r.AssetID)
		if err != nil {
			discarded++
			continue
		}
		if _, ok := candidates[assetID]; !ok {
			discarded++
			continue
		}
		if r.AssetName == "" {
			discarded++
			continue
		}
		confidence, ok := numericConfidence(r.Confidence)
		if !ok || confidence < float64(floor) {
			discarded++
			continue
		}
		out = append(out, types.TagSuggestion{
			AssetID:    assetID,
			AssetName:  r.AssetName,
			Confidence: clampConfidence(confidence),
			Reason:     r.Reason,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out, discarded
}

func numericConfidence(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampConfidence(f float64) int {
	return int(math.Round(math.Min(math.Max(f, 0), 100)))
}

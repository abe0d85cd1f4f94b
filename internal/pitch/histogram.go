package pitch

import "sort"

// VelocityBin holds the pitches whose speed rounds to Speed.
type VelocityBin struct {
	Speed  int            `json:"speed"` // mph
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// Count returns the bin's count for category, zero when absent.
func (b VelocityBin) Count(category string) int {
	return b.Counts[category]
}

// VelocityHistogram is a stacked speed distribution, ascending by speed.
type VelocityHistogram struct {
	Bins []VelocityBin `json:"bins"`
}

// BuildVelocityHistogram bins records by speed rounded half-up to the
// nearest mph, counting per category. Records without a finite speed are
// left out entirely; the Flight Model's 90 mph default is never used
// here.
func BuildVelocityHistogram(recs []PitchRecord) VelocityHistogram {
	bins := make(map[int]*VelocityBin)
	for _, r := range recs {
		if !r.HasSpeed() {
			continue
		}
		key := floorIndex(r.Speed + 0.5)
		b, ok := bins[key]
		if !ok {
			b = &VelocityBin{Speed: key, Counts: make(map[string]int)}
			bins[key] = b
		}
		b.Counts[r.CategoryOrUnknown()]++
		b.Total++
	}

	h := VelocityHistogram{Bins: make([]VelocityBin, 0, len(bins))}
	for _, b := range bins {
		h.Bins = append(h.Bins, *b)
	}
	sort.Slice(h.Bins, func(i, j int) bool { return h.Bins[i].Speed < h.Bins[j].Speed })
	return h
}

// Total is the number of records in the histogram.
func (h VelocityHistogram) Total() int {
	total := 0
	for _, b := range h.Bins {
		total += b.Total
	}
	return total
}

// Categories returns every category present in any bin, sorted.
func (h VelocityHistogram) Categories() []string {
	seen := make(CategorySet)
	for _, b := range h.Bins {
		for c := range b.Counts {
			seen[c] = struct{}{}
		}
	}
	return seen.Sorted()
}

// Range returns the lowest and highest bin keys. ok is false when the
// histogram is empty.
func (h VelocityHistogram) Range() (lo, hi int, ok bool) {
	if len(h.Bins) == 0 {
		return 0, 0, false
	}
	return h.Bins[0].Speed, h.Bins[len(h.Bins)-1].Speed, true
}

// Series returns, for category, one count per integer speed from lo to hi
// inclusive, with zeros for gaps. It is the shape stacked bar charts need.
func (h VelocityHistogram) Series(category string, lo, hi int) []int {
	if hi < lo {
		return nil
	}
	out := make([]int, hi-lo+1)
	for _, b := range h.Bins {
		if b.Speed < lo || b.Speed > hi {
			continue
		}
		out[b.Speed-lo] = b.Counts[category]
	}
	return out
}

// Bin returns the bin for a rounded speed.
func (h VelocityHistogram) Bin(speed int) (VelocityBin, bool) {
	i := sort.Search(len(h.Bins), func(i int) bool { return h.Bins[i].Speed >= speed })
	if i < len(h.Bins) && h.Bins[i].Speed == speed {
		return h.Bins[i], true
	}
	return VelocityBin{}, false
}

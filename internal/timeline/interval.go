package timeline

// Kind classifies a resolved sub-interval of a day.
type Kind string

const (
	KindWorking    Kind = "WORKING"
	KindNonWorking Kind = "NON_WORKING"
)

// ResolvedInterval is one piece of a day's availability partition. For any
// date the ordered set of resolved intervals covers [00:00, 24:00) exactly,
// with no gaps and no overlaps.
type ResolvedInterval struct {
	Start  Minute `json:"start"`
	End    Minute `json:"end"`
	Kind   Kind   `json:"kind"`
	Source string `json:"source,omitempty"`
}

// Duration returns the interval length in minutes.
func (iv ResolvedInterval) Duration() Minute {
	return iv.End - iv.Start
}

// partition is an ordered, gap-free cover of [00:00, 24:00).
type partition []ResolvedInterval

func newDayPartition(kind Kind, source string) partition {
	return partition{{Start: 0, End: MinutesInDay, Kind: kind, Source: source}}
}

// carve overwrites [start, end) with the given kind, splitting whatever the
// range currently covers. Later carves win over earlier ones. Out-of-range
// bounds are clamped; empty ranges are ignored.
func (p partition) carve(start, end Minute, kind Kind, source string) partition {
	if start < 0 {
		start = 0
	}
	if end > MinutesInDay {
		end = MinutesInDay
	}
	if end <= start {
		return p
	}

	out := make(partition, 0, len(p)+2)
	inserted := false
	for _, iv := range p {
		if iv.End <= start || iv.Start >= end {
			out = append(out, iv)
			continue
		}
		if iv.Start < start {
			out = append(out, ResolvedInterval{Start: iv.Start, End: start, Kind: iv.Kind, Source: iv.Source})
		}
		if !inserted {
			out = append(out, ResolvedInterval{Start: start, End: end, Kind: kind, Source: source})
			inserted = true
		}
		if iv.End > end {
			out = append(out, ResolvedInterval{Start: end, End: iv.End, Kind: iv.Kind, Source: iv.Source})
		}
	}
	return out
}

// merged collapses adjacent intervals of the same kind, keeping the earlier
// source label.
func (p partition) merged() []ResolvedInterval {
	if len(p) == 0 {
		return nil
	}
	out := make([]ResolvedInterval, 0, len(p))
	current := p[0]
	for _, iv := range p[1:] {
		if iv.Kind == current.Kind {
			current.End = iv.End
			continue
		}
		out = append(out, current)
		current = iv
	}
	return append(out, current)
}

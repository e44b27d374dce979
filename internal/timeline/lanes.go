package timeline

import "sort"

// assignLanes distributes overlapping events over side-by-side lanes using
// greedy interval partitioning: events are visited in start order and placed
// in the first lane that is free at their start, opening a new lane when none
// is. Lane counts are shared across each cluster of transitively overlapping
// events so every member of a cluster renders at the same width.
func assignLanes(events []Event) (lanes []int, counts []int) {
	n := len(events)
	lanes = make([]int, n)
	counts = make([]int, n)
	for i := range counts {
		counts[i] = 1
	}
	if n == 0 {
		return lanes, counts
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := events[order[a]], events[order[b]]
		if !ea.Start.Equal(eb.Start) {
			return ea.Start.Before(eb.Start)
		}
		return ea.End.Before(eb.End)
	})

	var cluster []int
	var laneEnds []int64 // per-lane busy-until, unix seconds
	var clusterEnd int64

	flush := func() {
		for _, i := range cluster {
			counts[i] = len(laneEnds)
		}
		cluster = cluster[:0]
		laneEnds = laneEnds[:0]
		clusterEnd = 0
	}

	for _, i := range order {
		e := events[i]
		start := e.Start.Unix()
		end := e.End.Unix()
		if end < start {
			end = start
		}

		if len(cluster) > 0 && start >= clusterEnd {
			flush()
		}

		placed := false
		for l, busyUntil := range laneEnds {
			if busyUntil <= start {
				lanes[i] = l
				laneEnds[l] = end
				placed = true
				break
			}
		}
		if !placed {
			lanes[i] = len(laneEnds)
			laneEnds = append(laneEnds, end)
		}

		cluster = append(cluster, i)
		if end > clusterEnd {
			clusterEnd = end
		}
	}
	flush()

	return lanes, counts
}

package detection

import (
	"sort"

	"truckmonitor/internal/model"
)

// IoU returns the intersection-over-union of two boxes.
func IoU(a, b model.Box) float64 {
	left := max(a.X, b.X)
	top := max(a.Y, b.Y)
	right := min(a.X+a.Width, b.X+b.Width)
	bottom := min(a.Y+a.Height, b.Y+b.Height)

	if right <= left || bottom <= top {
		return 0
	}

	inter := float64(right-left) * float64(bottom-top)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// NMS runs greedy non-max suppression and returns the kept indices in
// selection order. Candidates scoring at or below scoreThreshold are ignored;
// ties in score keep input order.
func NMS(boxes []model.Box, scores []float64, scoreThreshold, iouThreshold float64) []int {
	order := make([]int, 0, len(boxes))
	for i := range boxes {
		if scores[i] > scoreThreshold {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	suppressed := make([]bool, len(boxes))
	keep := make([]int, 0, len(order))
	for pos, i := range order {
		if suppressed[i] {
			continue
		}
		keep = append(keep, i)
		for _, j := range order[pos+1:] {
			if !suppressed[j] && IoU(boxes[i], boxes[j]) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return keep
}

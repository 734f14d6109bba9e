package scheduler

// taskHeap is a container/heap.Interface ordering tasks by
// (effective-priority desc, submission-time asc), the exact ready-queue
// ordering spec.md §4.8 specifies.
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].EffectivePriority != h[j].EffectivePriority {
		return h[i].EffectivePriority > h[j].EffectivePriority
	}
	return h[i].SubmittedAt.Before(h[j].SubmittedAt)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Package workload distributes unassigned chores across family members so the
// heaviest per-member load stays as small as the greedy heuristic allows.
//
// Tasks are taken hardest first and each goes to the member with the lowest
// running load (longest-processing-time-first). The result is deterministic:
// equal difficulties keep creation order and equal loads go to the lowest
// member id.
package workload

import (
	"sort"
	"time"
)

// Item is a task waiting to be assigned
type Item struct {
	TaskID     int64
	Difficulty int
	CreatedAt  time.Time
}

// Assignment maps one task to the member chosen for it
type Assignment struct {
	TaskID   int64
	MemberID int64
}

// Plan is the outcome of a balancing pass
type Plan struct {
	Assignments []Assignment
	// Loads is the total difficulty given to each member by this pass
	Loads map[int64]int
}

// Balance assigns every item to a member. It returns an empty plan when there
// are no items and nil when there are no members to assign to.
func Balance(items []Item, members []int64) *Plan {
	if len(members) == 0 {
		return nil
	}

	order := make([]int64, len(members))
	copy(order, members)
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	order = dedupe(order)

	loads := make(map[int64]int, len(order))
	for _, m := range order {
		loads[m] = 0
	}

	plan := &Plan{Loads: loads}
	for _, item := range sortedItems(items) {
		member := lightest(order, loads)
		plan.Assignments = append(plan.Assignments, Assignment{TaskID: item.TaskID, MemberID: member})
		loads[member] += item.Difficulty
	}

	return plan
}

// sortedItems orders items by difficulty descending, then creation order
func sortedItems(items []Item) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Difficulty != b.Difficulty {
			return a.Difficulty > b.Difficulty
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.TaskID < b.TaskID
	})
	return sorted
}

// lightest returns the member with the lowest load; order is ascending by id
// so the first minimum found wins ties.
func lightest(order []int64, loads map[int64]int) int64 {
	best := order[0]
	for _, m := range order[1:] {
		if loads[m] < loads[best] {
			best = m
		}
	}
	return best
}

func dedupe(sorted []int64) []int64 {
	out := sorted[:0]
	for i, m := range sorted {
		if i > 0 && m == sorted[i-1] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MaxLoadSpread returns the difference between the heaviest and lightest load
func (p *Plan) MaxLoadSpread() int {
	first := true
	var lo, hi int
	for _, l := range p.Loads {
		if first {
			lo, hi = l, l
			first = false
			continue
		}
		if l < lo {
			lo = l
		}
		if l > hi {
			hi = l
		}
	}
	return hi - lo
}

package repository

import (
	"sort"

	"flightshots/internal/models"
)

// Airports returns the distinct airports of approved photos, sorted.
func (r *PhotoRepository) Airports() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for _, p := range r.photos {
		if p.Status != models.PhotoApproved || p.Airport == "" || seen[p.Airport] {
			continue
		}
		seen[p.Airport] = true
		out = append(out, p.Airport)
	}
	sort.Strings(out)
	return out
}

// TagCounts counts tag usage across approved photos, most used first.
func (r *PhotoRepository) TagCounts() []models.TagCount {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := map[string]int{}
	for _, p := range r.photos {
		if p.Status != models.PhotoApproved {
			continue
		}
		for _, t := range p.Tags {
			counts[t]++
		}
	}

	out := make([]models.TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

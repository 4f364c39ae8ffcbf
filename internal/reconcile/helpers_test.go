package reconcile

import "github.com/aidanlsb/roadmap/internal/roadmap"

func item(label, title string, st roadmap.Status) roadmap.Item {
	return roadmap.Item{
		Title:       title,
		Label:       label,
		Description: "Description of " + title,
		Kind:        roadmap.KindFeature,
		Layer:       roadmap.LayerBackend,
		Priority:    roadmap.PriorityP1,
		Status:      st,
		StartDate:   "2026-01-05",
	}
}

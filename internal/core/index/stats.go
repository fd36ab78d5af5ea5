package index

import (
	"math"
	"time"
)

// Breakdown is a per-file or per-tag completion count.
type Breakdown struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Stats aggregates the snapshot. High priority counts pending todos
// with priority >= 2; overdue counts pending todos whose due date is
// before today's local calendar date.
type Stats struct {
	Total          int                  `json:"total"`
	Completed      int                  `json:"completed"`
	Pending        int                  `json:"pending"`
	CompletionRate float64              `json:"completion_rate"`
	HighPriority   int                  `json:"high_priority"`
	Overdue        int                  `json:"overdue"`
	TotalFiles     int                  `json:"total_files"`
	ByFile         map[string]Breakdown `json:"by_file"`
	ByTag          map[string]Breakdown `json:"by_tag"`
	LastUpdate     time.Time            `json:"last_update"`
}

// Stats computes aggregate statistics as of now. Empty markers are
// excluded, matching the default list view.
func (x *Index) Stats(now time.Time) Stats {
	today := now.Format("2006-01-02")

	s := Stats{
		ByFile:     map[string]Breakdown{},
		ByTag:      map[string]Breakdown{},
		LastUpdate: x.generatedAt,
	}

	for _, t := range x.todos {
		if t.RawText == "" {
			continue
		}

		s.Total++
		if t.Completed {
			s.Completed++
		} else {
			if t.Priority >= 2 {
				s.HighPriority++
			}
			if t.DueDate != "" && t.DueDate < today {
				s.Overdue++
			}
		}

		file := s.ByFile[t.FilePath]
		file.Total++
		if t.Completed {
			file.Completed++
		}
		s.ByFile[t.FilePath] = file

		for _, tag := range t.Tags {
			b := s.ByTag[tag]
			b.Total++
			if t.Completed {
				b.Completed++
			}
			s.ByTag[tag] = b
		}
	}

	s.Pending = s.Total - s.Completed
	s.TotalFiles = len(s.ByFile)
	if s.Total > 0 {
		s.CompletionRate = math.Round(float64(s.Completed)/float64(s.Total)*1000) / 10
	}

	return s
}

package grading

// Series is the per-field data a course chart is drawn from. Index i of
// every slice belongs to the same student.
type Series struct {
	Totals         []float64 `json:"totals"`
	Mids           []float64 `json:"mids"`
	Finals         []float64 `json:"finals"`
	P1s            []float64 `json:"p1s"`
	P2s            []float64 `json:"p2s"`
	ClassScores    []float64 `json:"class_scores"`
	HomeworkScores []float64 `json:"hw_scores"`
	QuizScores     []float64 `json:"quiz_scores"`
	LabScores      []float64 `json:"lab_scores"`

	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Summarize collects breakdowns into chart series. Empty input yields empty
// (non-nil) slices and zero statistics.
func Summarize(breakdowns []Breakdown) Series {
	n := len(breakdowns)
	s := Series{
		Totals:         make([]float64, 0, n),
		Mids:           make([]float64, 0, n),
		Finals:         make([]float64, 0, n),
		P1s:            make([]float64, 0, n),
		P2s:            make([]float64, 0, n),
		ClassScores:    make([]float64, 0, n),
		HomeworkScores: make([]float64, 0, n),
		QuizScores:     make([]float64, 0, n),
		LabScores:      make([]float64, 0, n),
		Count:          n,
	}

	var sum float64
	for i, b := range breakdowns {
		s.Totals = append(s.Totals, b.Total)
		s.Mids = append(s.Mids, b.MidTerm)
		s.Finals = append(s.Finals, b.Final)
		s.P1s = append(s.P1s, b.Project1)
		s.P2s = append(s.P2s, b.Project2)
		s.ClassScores = append(s.ClassScores, b.ClassScore)
		s.HomeworkScores = append(s.HomeworkScores, b.HomeworkScore)
		s.QuizScores = append(s.QuizScores, b.QuizScore)
		s.LabScores = append(s.LabScores, b.LabScore)

		sum += b.Total
		if i == 0 || b.Total < s.Min {
			s.Min = b.Total
		}
		if i == 0 || b.Total > s.Max {
			s.Max = b.Total
		}
	}
	if n > 0 {
		s.Mean = sum / float64(n)
	}

	return s
}

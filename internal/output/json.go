package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"fontspector/internal/checkapi"
	"fontspector/internal/config"
)

type jsonReport struct {
	RunID       string                      `json:"run_id"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Profile     string                      `json:"profile"`
	WorstStatus checkapi.StatusCode         `json:"worst_status"`
	Summary     map[checkapi.StatusCode]int `json:"summary"`
	Results     []*checkapi.CheckResult     `json:"results"`
}

// JSONReporter writes every result, unfiltered, as one JSON document.
type JSONReporter struct {
	w     io.WriteCloser
	runID string
	now   func() time.Time
}

func NewJSONReporter(path string, stdout io.Writer) (*JSONReporter, error) {
	w, err := openDestination(path, stdout)
	if err != nil {
		return nil, err
	}
	return &JSONReporter{w: w, runID: uuid.NewString(), now: time.Now}, nil
}

func (r *JSONReporter) Report(results *checkapi.RunResults, cfg *config.Config, _ *checkapi.Registry) error {
	sorted := results.Sorted()
	if sorted == nil {
		sorted = []*checkapi.CheckResult{}
	}
	doc := jsonReport{
		RunID:       r.runID,
		GeneratedAt: r.now().UTC(),
		Profile:     cfg.Profile.Name,
		WorstStatus: results.WorstStatus(),
		Summary:     results.Summary(),
		Results:     sorted,
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (r *JSONReporter) Close() error { return r.w.Close() }

package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sdh-lab/interview-pipeline/transcript"
)

// persist writes the report JSON into the outputs directory, timestamped so
// re-evaluations of the same session never overwrite each other.
func (s *Service) persist(r *Report) (string, error) {
	if err := os.MkdirAll(s.outputsDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("evaluation_%s_%s.json",
		transcript.SafeID(r.Inputs.SessionID), time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(s.outputsDir, name)
	if err := writeJSON(path, r); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

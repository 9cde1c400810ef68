package recommend

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"wardrobe/internal/apperr"
	"wardrobe/internal/logger"
)

// Runner invokes the external recommendation script and parses its output.
// The algorithm itself is opaque: the contract is one line of stdout holding
// a JSON-like structure that uses single quotes.
type Runner struct {
	interpreter string
	script      string
}

func NewRunner(interpreter, script string) *Runner {
	return &Runner{interpreter: interpreter, script: script}
}

// Recommend runs the script and returns the parsed recommendation payload.
func (r *Runner) Recommend(ctx context.Context) (map[string]interface{}, error) {
	cmd := exec.CommandContext(ctx, r.interpreter, r.script)

	out, err := cmd.Output()
	if err != nil {
		logger.Error("Recommendation script failed", "script", r.script, "error", err)
		return nil, apperr.ErrServer.WithCause(err)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	normalized := strings.ReplaceAll(line, "'", `"`)

	var recommendation map[string]interface{}
	if err := json.Unmarshal([]byte(normalized), &recommendation); err != nil {
		logger.Error("Recommendation output is not parseable", "script", r.script, "error", err)
		return nil, apperr.ErrServer.WithCause(err)
	}

	return recommendation, nil
}

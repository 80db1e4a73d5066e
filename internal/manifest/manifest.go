// Package manifest decodes the task manifest (spec.md §6): a JSON
// document mapping source identifier to a compilation command.
package manifest

import (
	"encoding/json"
	"io"

	"github.com/azag0/fcompile/internal/depgraph"
)

type taskJSON struct {
	Source   string   `json:"source"`
	Args     []string `json:"args"`
	Includes []string `json:"includes"`
}

// Read decodes a task manifest from r. Unknown keys are ignored by
// encoding/json's default decode behavior; includes defaults to an
// empty slice when omitted.
func Read(r io.Reader) (map[depgraph.Source]depgraph.Task, error) {
	var raw map[string]taskJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	tasks := make(map[depgraph.Source]depgraph.Task, len(raw))
	for id, t := range raw {
		tasks[depgraph.Source(id)] = depgraph.Task{
			SourcePath: t.Source,
			Args:       t.Args,
			Includes:   t.Includes,
		}
	}
	return tasks, nil
}

package pipeline

import (
	"fmt"
	"strings"
)

// ConfigError reports a task descriptor that cannot be executed as
// declared: a missing name, an unresolvable dependency, or an output
// declaration that does not match what the task actually returned. It is a
// programmer error and is never retried.
type ConfigError struct {
	Task   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("task %q: %s", e.Task, e.Reason)
}

// StuckTask describes one pending task that cannot run, together with the
// dependency keys it is still missing.
type StuckTask struct {
	Task    string
	Missing []TypeKey
}

// StallError reports that a scheduling pass made no progress while tasks
// remained pending. It covers circular dependencies, missing upstream
// producers, and data that was never supplied, and names every stuck task
// at once. The Registry is left in whatever state the last successful pass
// produced.
type StallError struct {
	Step  string
	Stuck []StuckTask
}

func (e *StallError) Error() string {
	names := make([]string, len(e.Stuck))
	var details strings.Builder
	for i, st := range e.Stuck {
		names[i] = st.Task
		keys := make([]string, len(st.Missing))
		for j, k := range st.Missing {
			keys[j] = k.String()
		}
		fmt.Fprintf(&details, "\n- %s: missing %s", st.Task, strings.Join(keys, ", "))
	}
	return fmt.Sprintf(
		"step %q: tasks could not be scheduled, [%s] have unfulfilled dependencies:%s",
		e.Step, strings.Join(names, ", "), details.String(),
	)
}

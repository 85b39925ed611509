package runner

import (
	"strings"

	"github.com/arthur-debert/busy/pkg/errors"
)

// Job is one named command. Several jobs may share a name; they then count
// towards the same loader.
type Job struct {
	Name    string
	Command string
	Args    []string
}

// String renders the job as name=command args
func (j Job) String() string {
	return j.Name + "=" + strings.Join(append([]string{j.Command}, j.Args...), " ")
}

// ParseJob parses "name=command arg..." where the command part is split on
// whitespace. Without "=" the command's base name is used as the loader name.
func ParseJob(def string) (Job, error) {
	name, cmdline, found := strings.Cut(def, "=")
	if !found {
		cmdline = def
		name = ""
	}

	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return Job{}, errors.Newf(errors.ErrJobInvalid, "job %q has no command", def).
			WithDetail("job", def)
	}

	name = strings.TrimSpace(name)
	if !found {
		name = baseName(fields[0])
	}

	return Job{Name: name, Command: fields[0], Args: fields[1:]}, nil
}

// ParseJobs parses every definition, stopping at the first invalid one
func ParseJobs(defs []string) ([]Job, error) {
	jobs := make([]Job, 0, len(defs))
	for _, def := range defs {
		job, err := ParseJob(def)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func baseName(command string) string {
	if i := strings.LastIndexAny(command, `/\`); i >= 0 {
		return command[i+1:]
	}
	return command
}

package cron

import (
	"context"
	"fmt"
	"strings"
)

// Job is one maintenance task run by the scheduler.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// jobSet keeps jobs in the order given and refuses blank or repeated names,
// since the name labels both log lines and metric series.
type jobSet []Job

func newJobSet(jobs []Job) (jobSet, error) {
	set := make(jobSet, 0, len(jobs))
	seen := make(map[string]struct{}, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		name := strings.TrimSpace(job.Name())
		if name == "" {
			return nil, fmt.Errorf("cron job %T has no name", job)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("cron job %q registered twice", name)
		}
		seen[name] = struct{}{}
		set = append(set, job)
	}
	return set, nil
}

func (s jobSet) names() []string {
	names := make([]string, len(s))
	for i, job := range s {
		names[i] = job.Name()
	}
	return names
}

package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Job is the envelope a producer enqueues for every domain event.
type Job struct {
	Name string  `json:"name"`
	Data JobData `json:"data"`
}

type JobData struct {
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   FlexID          `json:"aggregate_id"`
	Payload       json.RawMessage `json:"payload"`
	UserID        int64           `json:"user_id"`
	Timestamp     time.Time       `json:"timestamp"`
}

// FlexID accepts both JSON numbers and strings for aggregate ids.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("aggregate id must be a number or string: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

func (f FlexID) Int64() int64 {
	n, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseJob decodes a raw queue delivery body into a Job.
func ParseJob(body []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return Job{}, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	if job.Name == "" {
		return Job{}, fmt.Errorf("job has no name")
	}
	return job, nil
}

package job_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/p-v-srinag/queuectl/job"
)

func TestJobJSONRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	jb := job.Job{
		ID:         "j1",
		Command:    "echo hello",
		Status:     job.Pending,
		Attempts:   2,
		MaxRetries: 5,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	data, err := json.Marshal(jb)
	if err != nil {
		t.Fatal(err)
	}

	var out job.Job
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != jb {
		t.Fatalf("round trip mismatch: %+v != %+v", out, jb)
	}
}

func TestJobStateSerializesAsText(t *testing.T) {
	jb := job.Job{ID: "j1", Command: "true", Status: job.Processing}
	data, err := json.Marshal(jb)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["state"] != "PROCESSING" {
		t.Fatalf("expected state to serialize as PROCESSING, got %v", raw["state"])
	}
}

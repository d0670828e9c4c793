package job

import "fmt"

// State represents the current lifecycle state of a Job.
//
// The state machine is:
//
//	Pending    -> Processing
//	Processing -> Completed
//	Processing -> Failed     -> Pending   (retry, attempts < max)
//	Processing -> Dead                    (attempts >= max)
//	Dead       -> Pending                 (operator-initiated retry)
//
// Failed is a transient book-keeping state: a worker may pass through
// it on the way back to Pending, but it is never the terminal outcome
// of a failed attempt. Unknown is reserved as the zero value.
type State uint8

const (
	// Unknown represents an unspecified or invalid job state. It is
	// the zero value of State and is never persisted.
	Unknown State = iota

	// Pending indicates the job is eligible for claiming.
	Pending

	// Processing indicates the job has been claimed by a worker and
	// is currently executing (or was executing when last observed).
	Processing

	// Completed indicates successful execution. Terminal.
	Completed

	// Failed indicates the most recent attempt failed but the job
	// will be retried; it is a transient record on the way back to
	// Pending, not a resting state.
	Failed

	// Dead indicates the job exhausted its retry budget and has been
	// moved to the dead-letter queue. Terminal until retried.
	Dead
)

func stateToString(s State) string {
	switch s {
	case Pending:
		return "PENDING"
	case Processing:
		return "PROCESSING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	case Dead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

func stateFromString(s string) (State, error) {
	switch s {
	case "PENDING":
		return Pending, nil
	case "PROCESSING":
		return Processing, nil
	case "COMPLETED":
		return Completed, nil
	case "FAILED":
		return Failed, nil
	case "DEAD":
		return Dead, nil
	case "UNKNOWN":
		return Unknown, nil
	default:
		return 0, fmt.Errorf("job: unknown state: %s", s)
	}
}

// ParseState converts a string representation of a state into a
// State value. Recognized values are PENDING, PROCESSING, COMPLETED,
// FAILED, DEAD and UNKNOWN. An error is returned for anything else.
func ParseState(s string) (State, error) {
	return stateFromString(s)
}

// String returns the canonical string representation of the state.
func (s State) String() string {
	return stateToString(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(stateToString(s)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	state, err := stateFromString(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

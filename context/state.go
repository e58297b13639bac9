package context

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kycflow/kycflow/errors"
)

// VerificationIDKey is the template variable holding the verification identifier.
const VerificationIDKey = "verificationId"

// State is the mutable record of a single scenario.
// It is created at the start of a scenario and must not be shared with other scenarios.
type State struct {
	m              sync.RWMutex
	verificationID string
	token          string
	values         map[string]any
}

// NewState returns an empty State.
func NewState() *State {
	return &State{values: map[string]any{}}
}

// VerificationID returns the verification identifier or an empty string if it is not assigned yet.
func (s *State) VerificationID() string {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.verificationID
}

// SetVerificationID assigns the verification identifier.
// It can be assigned exactly once with a non-empty value.
func (s *State) SetVerificationID(id string) error {
	if id == "" {
		return errors.New("verification id must not be empty")
	}
	s.m.Lock()
	defer s.m.Unlock()
	if s.verificationID != "" {
		return errors.Errorf("verification id is already assigned: %s", s.verificationID)
	}
	s.verificationID = id
	return nil
}

// Token returns the bearer token held by the scenario.
func (s *State) Token() string {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.token
}

// SetToken sets the bearer token.
func (s *State) SetToken(token string) {
	s.m.Lock()
	defer s.m.Unlock()
	s.token = token
}

// Get returns the value stored with key.
func (s *State) Get(key string) (any, bool) {
	s.m.RLock()
	defer s.m.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores v with key.
// A scalar stored with VerificationIDKey assigns the verification identifier in its string form.
func (s *State) Set(key string, v any) error {
	if key == VerificationIDKey {
		id, err := identifier(v)
		if err == nil {
			err = s.SetVerificationID(id)
		}
		return errors.Assertion(err)
	}
	s.m.Lock()
	defer s.m.Unlock()
	s.values[key] = v
	return nil
}

// Snapshot returns a copy of the variables held by s.
func (s *State) Snapshot() map[string]any {
	s.m.RLock()
	defer s.m.RUnlock()
	m := make(map[string]any, len(s.values)+1)
	for k, v := range s.values {
		m[k] = v
	}
	if s.verificationID != "" {
		m[VerificationIDKey] = s.verificationID
	}
	return m
}

// identifier returns the string form of an opaque identifier decoded from a response.
func identifier(v any) (string, error) {
	switch id := v.(type) {
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(id), nil
	case nil:
		return "", errors.New("verification id must not be null")
	default:
		return "", errors.Errorf("verification id must be a scalar but got %T", v)
	}
}

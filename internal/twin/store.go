package twin

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status values of a verification.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
)

// Result is the result of a process of a verification.
type Result struct {
	Verified  bool `json:"verified"`
	Confirmed bool `json:"confirmed"`
	Informed  bool `json:"informed,omitempty"`
	Attempts  int  `json:"attempts"`
	uploaded  bool
}

// Verification is a verification record.
type Verification struct {
	ID                string         `json:"id"`
	Status            string         `json:"status"`
	PdpaConsented     bool           `json:"pdpaConsented"`
	WelcomeConfirmed  bool           `json:"welcomeConfirmed"`
	FrontIDCardConfig map[string]any `json:"frontIdCardConfig,omitempty"`
	BackIDCardConfig  map[string]any `json:"backIdCardConfig,omitempty"`
	DopaConfig        map[string]any `json:"dopaConfig,omitempty"`
	FrontIDCardResult *Result        `json:"frontIdCardResult,omitempty"`
	BackIDCardResult  *Result        `json:"backIdCardResult,omitempty"`
	DopaResult        *Result        `json:"dopaResult,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Proprietor is a proprietor of a case.
type Proprietor struct {
	Verifications []*Verification `json:"verifications"`
}

// Case is a case of the case service.
type Case struct {
	ID          string        `json:"id"`
	Proprietors []*Proprietor `json:"proprietors"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type memoryStore struct {
	m             sync.RWMutex
	verifications map[string]*Verification
	cases         map[string]*Case
	sessions      map[string]string
}

func newMemoryStore() *memoryStore {
	s := &memoryStore{}
	s.reset()
	return s
}

func (s *memoryStore) reset() {
	s.m.Lock()
	defer s.m.Unlock()
	s.verifications = map[string]*Verification{}
	s.cases = map[string]*Case{}
	s.sessions = map[string]string{}
}

func (s *memoryStore) createVerification(cfg map[string]any, now time.Time) *Verification {
	v := &Verification{
		ID:                uuid.NewString(),
		Status:            StatusPending,
		FrontIDCardConfig: object(cfg["frontIdCardConfig"]),
		BackIDCardConfig:  object(cfg["backIdCardConfig"]),
		DopaConfig:        object(cfg["dopaConfig"]),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.m.Lock()
	defer s.m.Unlock()
	s.verifications[v.ID] = v
	return v.copy()
}

func (s *memoryStore) createCase(verifications [][]map[string]any, now time.Time) *Case {
	c := &Case{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	for _, cfgs := range verifications {
		p := &Proprietor{Verifications: []*Verification{}}
		for _, cfg := range cfgs {
			p.Verifications = append(p.Verifications, s.createVerification(cfg, now))
		}
		c.Proprietors = append(c.Proprietors, p)
	}
	s.m.Lock()
	defer s.m.Unlock()
	s.cases[c.ID] = c
	return c
}

// update calls f with the verification id under the lock and returns a copy of the result.
func (s *memoryStore) update(id string, now time.Time, f func(*Verification) error) (*Verification, bool, error) {
	s.m.Lock()
	defer s.m.Unlock()
	v, ok := s.verifications[id]
	if !ok {
		return nil, false, nil
	}
	if err := f(v); err != nil {
		return nil, true, err
	}
	v.UpdatedAt = now
	return v.copy(), true, nil
}

func (s *memoryStore) verification(id string) (*Verification, bool) {
	s.m.RLock()
	defer s.m.RUnlock()
	v, ok := s.verifications[id]
	if !ok {
		return nil, false
	}
	return v.copy(), true
}

func (s *memoryStore) addSession(username string) string {
	id := uuid.NewString()
	s.m.Lock()
	defer s.m.Unlock()
	s.sessions[id] = username
	return id
}

func (s *memoryStore) session(id string) (string, bool) {
	s.m.RLock()
	defer s.m.RUnlock()
	u, ok := s.sessions[id]
	return u, ok
}

type snapshot struct {
	Verifications []*Verification `json:"verifications"`
	Cases         []*Case         `json:"cases"`
}

func (s *memoryStore) snapshot() snapshot {
	s.m.RLock()
	defer s.m.RUnlock()
	snap := snapshot{
		Verifications: make([]*Verification, 0, len(s.verifications)),
		Cases:         make([]*Case, 0, len(s.cases)),
	}
	for _, v := range s.verifications {
		snap.Verifications = append(snap.Verifications, v.copy())
	}
	for _, c := range s.cases {
		snap.Cases = append(snap.Cases, c)
	}
	sort.Slice(snap.Verifications, func(i, j int) bool {
		return snap.Verifications[i].CreatedAt.Before(snap.Verifications[j].CreatedAt)
	})
	sort.Slice(snap.Cases, func(i, j int) bool {
		return snap.Cases[i].CreatedAt.Before(snap.Cases[j].CreatedAt)
	})
	return snap
}

func (v *Verification) copy() *Verification {
	c := *v
	for _, r := range []**Result{&c.FrontIDCardResult, &c.BackIDCardResult, &c.DopaResult} {
		if *r != nil {
			rr := **r
			*r = &rr
		}
	}
	return &c
}

func (v *Verification) result(process string) **Result {
	switch process {
	case "frontIdCards":
		return &v.FrontIDCardResult
	case "backIdCards":
		return &v.BackIDCardResult
	case "dopa":
		return &v.DopaResult
	default:
		return nil
	}
}

func (v *Verification) config(process string) map[string]any {
	switch process {
	case "frontIdCards":
		return v.FrontIDCardConfig
	case "backIdCards":
		return v.BackIDCardConfig
	case "dopa":
		return v.DopaConfig
	default:
		return nil
	}
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

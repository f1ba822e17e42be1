package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/pkg/metrics"
)

// key identifies one (employee, scenario) pair.
type key struct {
	employeeID string
	scenarioID string
}

// Snapshot is an immutable view of the store used by readers.
type Snapshot struct {
	Records map[key]model.ProgressRecord
	Status  map[key]ScenarioStatus
}

// MemoryStore is the in-memory Store implementation.
//
// Writers hold mu and publish a fresh Snapshot after every change; readers
// load the snapshot without locking.
type MemoryStore struct {
	mu            sync.Mutex
	records       map[key]model.ProgressRecord
	status        map[key]ScenarioStatus
	responses     map[key][]model.EmployeeResponse
	responseLimit int
	seed          []model.ProgressRecord

	snapshot atomic.Pointer[Snapshot]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a store with configuration options.
func NewMemoryStore(opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		records:   make(map[key]model.ProgressRecord),
		status:    make(map[key]ScenarioStatus),
		responses: make(map[key][]model.EmployeeResponse),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, r := range s.seed {
		if err := validate(r.EmployeeID, r.ScenarioID, r.TotalSteps); err != nil {
			return nil, err
		}
		k := key{r.EmployeeID, r.ScenarioID}
		if _, dup := s.records[k]; dup {
			return nil, fmt.Errorf("%w: duplicate record for %s/%s", ErrInvalidRecord, r.EmployeeID, r.ScenarioID)
		}
		r = cloneRecord(r)
		r.CompletedSteps = min(max(r.CompletedSteps, 0), r.TotalSteps)
		s.records[k] = r
		switch {
		case r.Completed():
			var score *int
			if r.AverageScore != nil {
				v := int(math.Floor(*r.AverageScore + 0.5))
				score = &v
			}
			s.status[k] = ScenarioStatus{Status: model.StatusCompleted, Score: score}
		case r.InProgress():
			s.status[k] = ScenarioStatus{Status: model.StatusInProgress}
		}
	}
	s.seed = nil
	s.publishLocked()
	return s, nil
}

// EnsureProgress implements Store.
func (s *MemoryStore) EnsureProgress(_ context.Context, employeeID, scenarioID string, totalSteps int, startedAt time.Time) (model.ProgressRecord, error) {
	if err := validate(employeeID, scenarioID, totalSteps); err != nil {
		return model.ProgressRecord{}, err
	}
	defer observe(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{employeeID, scenarioID}
	if r, ok := s.records[k]; ok {
		return cloneRecord(r), nil
	}
	r := model.ProgressRecord{
		EmployeeID: employeeID,
		ScenarioID: scenarioID,
		TotalSteps: totalSteps,
		StartTime:  startedAt,
	}
	s.records[k] = r
	s.publishLocked()
	return r, nil
}

// RaiseCompletedSteps implements Store.
func (s *MemoryStore) RaiseCompletedSteps(_ context.Context, employeeID, scenarioID string, completed int) (model.ProgressRecord, error) {
	defer observe(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{employeeID, scenarioID}
	r, ok := s.records[k]
	if !ok {
		return model.ProgressRecord{}, fmt.Errorf("%w: %s/%s", ErrNotFound, employeeID, scenarioID)
	}
	next := min(max(r.CompletedSteps, completed), r.TotalSteps)
	if next != r.CompletedSteps {
		r = cloneRecord(r)
		r.CompletedSteps = next
		s.records[k] = r
		s.publishLocked()
	}
	return cloneRecord(r), nil
}

// FinalizeProgress implements Store.
func (s *MemoryStore) FinalizeProgress(_ context.Context, employeeID, scenarioID string, completedAt time.Time, avg *float64, best *int) (model.ProgressRecord, error) {
	defer observe(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{employeeID, scenarioID}
	r, ok := s.records[k]
	if !ok {
		return model.ProgressRecord{}, fmt.Errorf("%w: %s/%s", ErrNotFound, employeeID, scenarioID)
	}
	r = cloneRecord(r)
	r.CompletedSteps = r.TotalSteps
	at := completedAt
	r.CompletionTime = &at
	r.AverageScore = cloneFloat(avg)
	r.BestScore = cloneInt(best)
	s.records[k] = r
	s.publishLocked()
	return cloneRecord(r), nil
}

// MarkInProgress implements Store.
func (s *MemoryStore) MarkInProgress(_ context.Context, employeeID, scenarioID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{employeeID, scenarioID}
	if st := s.status[k]; st.Status == model.StatusCompleted || st.Status == model.StatusInProgress {
		return nil
	}
	s.status[k] = ScenarioStatus{Status: model.StatusInProgress}
	s.publishLocked()
	return nil
}

// MarkCompleted implements Store.
func (s *MemoryStore) MarkCompleted(_ context.Context, employeeID, scenarioID string, score *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status[key{employeeID, scenarioID}] = ScenarioStatus{Status: model.StatusCompleted, Score: cloneInt(score)}
	s.publishLocked()
	return nil
}

// AppendResponse implements Store.
func (s *MemoryStore) AppendResponse(_ context.Context, resp model.EmployeeResponse) error {
	if resp.ID == "" || resp.EmployeeID == "" || resp.ScenarioID == "" {
		return fmt.Errorf("%w: response needs id, employee and scenario", ErrInvalidRecord)
	}
	defer observe(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{resp.EmployeeID, resp.ScenarioID}
	list := append(s.responses[k], resp)
	if s.responseLimit > 0 && len(list) > s.responseLimit {
		list = append([]model.EmployeeResponse(nil), list[len(list)-s.responseLimit:]...)
	}
	s.responses[k] = list
	return nil
}

// Progress implements Store.
func (s *MemoryStore) Progress(_ context.Context, employeeID string) []model.ProgressRecord {
	snap := s.snapshot.Load()
	out := make([]model.ProgressRecord, 0)
	for k, r := range snap.Records {
		if k.employeeID == employeeID {
			out = append(out, cloneRecord(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScenarioID < out[j].ScenarioID })
	return out
}

// ProgressFor implements Store.
func (s *MemoryStore) ProgressFor(_ context.Context, employeeID, scenarioID string) (model.ProgressRecord, error) {
	r, ok := s.snapshot.Load().Records[key{employeeID, scenarioID}]
	if !ok {
		return model.ProgressRecord{}, fmt.Errorf("%w: %s/%s", ErrNotFound, employeeID, scenarioID)
	}
	return cloneRecord(r), nil
}

// Status implements Store.
func (s *MemoryStore) Status(_ context.Context, employeeID, scenarioID string) ScenarioStatus {
	st, ok := s.snapshot.Load().Status[key{employeeID, scenarioID}]
	if !ok {
		return ScenarioStatus{Status: model.StatusNotStarted}
	}
	return ScenarioStatus{Status: st.Status, Score: cloneInt(st.Score)}
}

// Responses implements Store.
func (s *MemoryStore) Responses(_ context.Context, employeeID, scenarioID string) []model.EmployeeResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.EmployeeResponse{}, s.responses[key{employeeID, scenarioID}]...)
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.snapshot.Load().Records)
}

// publishLocked rebuilds and publishes the reader snapshot. Records are never
// mutated in place, so copying the maps is enough.
func (s *MemoryStore) publishLocked() {
	records := make(map[key]model.ProgressRecord, len(s.records))
	for k, r := range s.records {
		records[k] = r
	}
	status := make(map[key]ScenarioStatus, len(s.status))
	for k, st := range s.status {
		status[k] = st
	}
	s.snapshot.Store(&Snapshot{Records: records, Status: status})
	metrics.UpdateProgressRecords(len(records))
}

func observe(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func validate(employeeID, scenarioID string, totalSteps int) error {
	if employeeID == "" || scenarioID == "" {
		return fmt.Errorf("%w: employee and scenario ids are required", ErrInvalidRecord)
	}
	if totalSteps < 0 {
		return fmt.Errorf("%w: negative total steps", ErrInvalidRecord)
	}
	return nil
}

func cloneRecord(r model.ProgressRecord) model.ProgressRecord {
	if r.CompletionTime != nil {
		t := *r.CompletionTime
		r.CompletionTime = &t
	}
	r.AverageScore = cloneFloat(r.AverageScore)
	r.BestScore = cloneInt(r.BestScore)
	return r
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

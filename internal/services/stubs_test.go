package services

import (
	"context"
	"sync"

	"pack-backend/internal/models"
	"pack-backend/internal/repositories"
)

// stubCustomerStore keeps customers in memory and records every history
// entry that would have been appended, so tests can assert exactly-one
// entry per transition.
type stubCustomerStore struct {
	mu        sync.Mutex
	customers map[int]*models.Customer
	nextID    int

	updateErr       error
	appendedEntries []models.StatusHistoryEntry
	updateCalls     int

	// getHook runs on every successful Get/GetByName with a running call
	// count, letting tests change the row between two reads the way a
	// concurrent operation would.
	getCalls int
	getHook  func(call int, c *models.Customer)
}

func newStubCustomerStore() *stubCustomerStore {
	return &stubCustomerStore{customers: make(map[int]*models.Customer), nextID: 1}
}

func (s *stubCustomerStore) add(c *models.Customer) *models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.nextID
		s.nextID++
	}
	s.customers[c.ID] = c
	return c
}

func (s *stubCustomerStore) Create(ctx context.Context, c *models.Customer) error {
	s.add(c)
	return nil
}

func (s *stubCustomerStore) Get(ctx context.Context, id int) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.customers[id]; ok {
		s.getCalls++
		if s.getHook != nil {
			s.getHook(s.getCalls, c)
		}
		return c, nil
	}
	return nil, repositories.ErrNoRows
}

func (s *stubCustomerStore) GetByName(ctx context.Context, name string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.Name == name {
			s.getCalls++
			if s.getHook != nil {
				s.getHook(s.getCalls, c)
			}
			return c, nil
		}
	}
	return nil, repositories.ErrNoRows
}

func (s *stubCustomerStore) List(ctx context.Context) ([]*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Customer
	for _, c := range s.customers {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCustomerStore) UpdateStatus(ctx context.Context, c *models.Customer, entry *models.StatusHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.customers[c.ID]; !ok {
		return repositories.ErrNoRows
	}
	if entry != nil {
		s.appendedEntries = append(s.appendedEntries, *entry)
	}
	s.customers[c.ID] = c
	return nil
}

func (s *stubCustomerStore) AppendHistory(ctx context.Context, customerID int, entry *models.StatusHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendedEntries = append(s.appendedEntries, *entry)
	return nil
}

func (s *stubCustomerStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return repositories.ErrNoRows
	}
	delete(s.customers, id)
	return nil
}

type stubPanelStore struct {
	ids     map[int][]string
	batches int
}

func newStubPanelStore() *stubPanelStore {
	return &stubPanelStore{ids: make(map[int][]string)}
}

func (s *stubPanelStore) CreateBatch(ctx context.Context, customerID int, panels []models.Panel) error {
	s.batches++
	for _, p := range panels {
		s.ids[customerID] = append(s.ids[customerID], p.PanelID)
	}
	return nil
}

func (s *stubPanelStore) ListByCustomer(ctx context.Context, customerID int) ([]models.Panel, error) {
	var out []models.Panel
	for _, id := range s.ids[customerID] {
		out = append(out, models.Panel{CustomerID: customerID, PanelID: id})
	}
	return out, nil
}

func (s *stubPanelStore) ListIDsByCustomer(ctx context.Context, customerID int) ([]string, error) {
	return s.ids[customerID], nil
}

type stubArchiveStore struct {
	mu      sync.Mutex
	records map[int]*models.ArchiveRecord
	nextID  int

	createErr error
}

func newStubArchiveStore() *stubArchiveStore {
	return &stubArchiveStore{records: make(map[int]*models.ArchiveRecord), nextID: 1}
}

func (s *stubArchiveStore) Create(ctx context.Context, rec *models.ArchiveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	rec.ID = s.nextID
	s.nextID++
	clone := *rec
	s.records[rec.ID] = &clone
	return nil
}

func (s *stubArchiveStore) Get(ctx context.Context, id int) (*models.ArchiveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, repositories.ErrNoRows
}

func (s *stubArchiveStore) GetDetail(ctx context.Context, id int) (*models.ArchiveRecord, error) {
	return s.Get(ctx, id)
}

func (s *stubArchiveStore) List(ctx context.Context, page, pageSize int) ([]*models.ArchiveRecord, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ArchiveRecord
	for _, rec := range s.records {
		clone := *rec
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (s *stubArchiveStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return repositories.ErrNoRows
	}
	delete(s.records, id)
	return nil
}

// stubScanSource serves a fixed package list regardless of directory.
type stubScanSource struct {
	packages []models.Package
	err      error
}

func (s *stubScanSource) ReadWorkingDir(workingDir string) ([]models.Package, error) {
	return s.packages, s.err
}

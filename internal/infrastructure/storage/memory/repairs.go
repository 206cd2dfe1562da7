package memory

import (
	"context"
	"sync"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/repairs"
	"officina/internal/domain/workflow"
)

// RepairStore is an in-memory repairs.Repository.
type RepairStore struct {
	mu      sync.Mutex
	tickets map[id.ID]*repairs.Ticket
	usages  map[id.ID][]repairs.PartUsage
}

// NewRepairStore creates an empty repair ticket store.
func NewRepairStore() *RepairStore {
	return &RepairStore{
		tickets: make(map[id.ID]*repairs.Ticket),
		usages:  make(map[id.ID][]repairs.PartUsage),
	}
}

var _ repairs.Repository = (*RepairStore)(nil)

func cloneTicket(t *repairs.Ticket) *repairs.Ticket {
	out := *t
	out.History = make([]repairs.StatusEntry, len(t.History))
	copy(out.History, t.History)
	if t.AssignedTechnicianID != nil {
		tech := *t.AssignedTechnicianID
		out.AssignedTechnicianID = &tech
	}
	return &out
}

func (s *RepairStore) Create(ctx context.Context, t *repairs.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[t.ID]; ok {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "ticket already exists").
			WithDetail("id", t.ID.String())
	}
	s.tickets[t.ID] = cloneTicket(t)
	return nil
}

func (s *RepairStore) GetByID(ctx context.Context, ticketID id.ID) (*repairs.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, apperror.NewNotFound("ticket", ticketID.String())
	}
	return cloneTicket(t), nil
}

func (s *RepairStore) CommitStatus(ctx context.Context, t *repairs.Ticket, to workflow.Status, entry repairs.StatusEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[t.ID]
	if !ok {
		return false, apperror.NewNotFound("ticket", t.ID.String())
	}
	if stored.Version != t.Version {
		return false, nil
	}

	stored.Status = to
	stored.History = append(stored.History, entry)
	stored.Version++
	return true, nil
}

func (s *RepairStore) SetTechnician(ctx context.Context, ticketID id.ID, technicianID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tickets[ticketID]
	if !ok {
		return apperror.NewNotFound("ticket", ticketID.String())
	}
	tech := technicianID
	stored.AssignedTechnicianID = &tech
	return nil
}

func (s *RepairStore) AddPartUsage(ctx context.Context, usage repairs.PartUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[usage.TicketID]; !ok {
		return apperror.NewNotFound("ticket", usage.TicketID.String())
	}
	s.usages[usage.TicketID] = append(s.usages[usage.TicketID], usage)
	return nil
}

func (s *RepairStore) PartUsages(ctx context.Context, ticketID id.ID) ([]repairs.PartUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]repairs.PartUsage, len(s.usages[ticketID]))
	copy(out, s.usages[ticketID])
	return out, nil
}

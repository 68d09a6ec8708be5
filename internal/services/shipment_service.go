package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/domain"
	"marketplace/internal/pricing"
	"marketplace/internal/validate"
)

type ShipmentDraft struct {
	pricing.Draft
	Recipient domain.Contact `json:"recipient"`
	Reference string         `json:"reference"`
}

type Shipment struct {
	ID        string           `json:"id"`
	Reference string           `json:"reference,omitempty"`
	Draft     pricing.Draft    `json:"draft"`
	Recipient domain.Contact   `json:"recipient"`
	Estimate  pricing.Estimate `json:"estimate"`
	Status    domain.Status    `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ShipmentService keeps the back-office shipment book in memory. Contents
// are lost on restart.
type ShipmentService struct {
	Machine *domain.StatusMachine

	mu   sync.RWMutex
	book map[string]*Shipment
}

func NewShipmentService(machine *domain.StatusMachine) *ShipmentService {
	if machine == nil {
		machine = domain.NewStatusMachine(nil)
	}
	return &ShipmentService{Machine: machine, book: map[string]*Shipment{}}
}

func (s *ShipmentService) Estimate(d pricing.Draft) (pricing.Estimate, error) {
	return pricing.EstimateShipment(d)
}

func (s *ShipmentService) Create(_ context.Context, in ShipmentDraft) (Shipment, error) {
	est, err := pricing.EstimateShipment(in.Draft)
	if err != nil {
		return Shipment{}, err
	}
	recipient, err := validate.Contact(in.Recipient)
	if err != nil {
		return Shipment{}, err
	}
	now := time.Now().UTC()
	sh := &Shipment{
		ID:        uuid.NewString(),
		Reference: in.Reference,
		Draft:     in.Draft,
		Recipient: recipient,
		Estimate:  est,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.book[sh.ID] = sh
	s.mu.Unlock()
	return *sh, nil
}

// List returns the book, newest first.
func (s *ShipmentService) List(_ context.Context) []Shipment {
	s.mu.RLock()
	out := make([]Shipment, 0, len(s.book))
	for _, sh := range s.book {
		out = append(out, *sh)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *ShipmentService) SetStatus(_ context.Context, id string, in StatusChange) (Shipment, bool, error) {
	to, err := domain.ParseStatus(in.Status)
	if err != nil {
		return Shipment{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.book[id]
	if !ok {
		return Shipment{}, false, domain.NotFoundf("shipment not found")
	}
	override, err := s.Machine.Check(sh.Status, to, in.Confirm)
	if err != nil {
		return Shipment{}, false, err
	}
	sh.Status = to
	sh.UpdatedAt = time.Now().UTC()
	return *sh, override, nil
}

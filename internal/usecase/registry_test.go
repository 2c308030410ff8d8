package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/repository"
)

const validCPF = "96471532016"

type producerRepoMock struct {
	producer domain.Producer
	inUse    bool

	created []domain.Producer
	updated []domain.Producer
	deleted []string
}

func (m *producerRepoMock) Create(_ context.Context, producer domain.Producer) error {
	m.created = append(m.created, producer)
	return nil
}

func (m *producerRepoMock) GetByID(_ context.Context, id string) (*domain.Producer, error) {
	if m.producer.ID == "" || m.producer.ID != id {
		return nil, repository.ErrNotFound
	}
	copy := m.producer
	return &copy, nil
}

func (m *producerRepoMock) List(context.Context, port.ProducerFilter, port.Page) ([]domain.Producer, int, error) {
	return nil, 0, errors.New("unexpected call: List")
}

func (m *producerRepoMock) Update(_ context.Context, producer domain.Producer) error {
	if m.producer.ID != producer.ID {
		return repository.ErrNotFound
	}
	m.producer = producer
	m.updated = append(m.updated, producer)
	return nil
}

func (m *producerRepoMock) SoftDelete(_ context.Context, id string) error {
	if m.producer.ID != id {
		return repository.ErrNotFound
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *producerRepoMock) DocumentInUse(context.Context, string, string) (bool, error) {
	return m.inUse, nil
}

type farmRepoMock struct {
	farm domain.Farm

	created []domain.Farm
	updated []domain.Farm
	deleted []string
}

func (m *farmRepoMock) Create(_ context.Context, farm domain.Farm) error {
	m.created = append(m.created, farm)
	return nil
}

func (m *farmRepoMock) GetByID(_ context.Context, id string) (*domain.Farm, error) {
	if m.farm.ID == "" || m.farm.ID != id {
		return nil, repository.ErrNotFound
	}
	copy := m.farm
	return &copy, nil
}

func (m *farmRepoMock) List(context.Context, port.FarmFilter, port.Page) ([]domain.Farm, int, error) {
	return nil, 0, errors.New("unexpected call: List")
}

func (m *farmRepoMock) Update(_ context.Context, farm domain.Farm) error {
	if m.farm.ID != farm.ID {
		return repository.ErrNotFound
	}
	m.farm = farm
	m.updated = append(m.updated, farm)
	return nil
}

func (m *farmRepoMock) SoftDelete(_ context.Context, id string) error {
	if m.farm.ID != id {
		return repository.ErrNotFound
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func TestCreateProducerPublishesEvent(t *testing.T) {
	producers := &producerRepoMock{}
	events := &eventPublisherMock{}

	svc := NewProducerService(producers, events, nil)
	svc.WithClock(func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	})

	producer, err := svc.Create(context.Background(), CreateProducerInput{
		CPFCNPJ: "964.715.320-16",
		Name:    "  Fazendas Reunidas  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if producer.CPFCNPJ.String() != validCPF {
		t.Fatalf("expected normalized document %q, got %q", validCPF, producer.CPFCNPJ)
	}
	if producer.Name != "Fazendas Reunidas" {
		t.Fatalf("expected trimmed name, got %q", producer.Name)
	}
	if len(producers.created) != 1 {
		t.Fatalf("expected one persisted row, got %d", len(producers.created))
	}
	if len(events.producerCreated) != 1 {
		t.Fatalf("expected one registration event, got %d", len(events.producerCreated))
	}
	if events.producerCreated[0].ProducerID != producer.ID {
		t.Fatal("expected event to reference the new producer")
	}
}

func TestCreateProducerRejectsInvalidDocument(t *testing.T) {
	svc := NewProducerService(&producerRepoMock{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateProducerInput{CPFCNPJ: "11111111111", Name: "X"})
	if !errors.Is(err, domain.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestCreateProducerRejectsDuplicateDocument(t *testing.T) {
	svc := NewProducerService(&producerRepoMock{inUse: true}, nil, nil)

	_, err := svc.Create(context.Background(), CreateProducerInput{CPFCNPJ: validCPF, Name: "X"})
	if !errors.Is(err, ErrDuplicateDocument) {
		t.Fatalf("expected ErrDuplicateDocument, got %v", err)
	}
}

func TestSoftDeleteProducerPublishesArchiveEvent(t *testing.T) {
	producers := &producerRepoMock{producer: domain.Producer{ID: "prod-1"}}
	events := &eventPublisherMock{}

	svc := NewProducerService(producers, events, nil)

	if err := svc.SoftDelete(context.Background(), "prod-1", "admin-1"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if len(producers.deleted) != 1 {
		t.Fatalf("expected one archived row, got %d", len(producers.deleted))
	}
	if len(events.archived) != 1 {
		t.Fatalf("expected one archive event, got %d", len(events.archived))
	}
	if events.archived[0].EntityType != "producer" || events.archived[0].EntityID != "prod-1" {
		t.Fatalf("unexpected archive event %+v", events.archived[0])
	}
	if events.archived[0].ArchivedBy != "admin-1" {
		t.Fatalf("expected actor recorded, got %q", events.archived[0].ArchivedBy)
	}
}

func TestSoftDeleteProducerNotFound(t *testing.T) {
	svc := NewProducerService(&producerRepoMock{}, nil, nil)

	err := svc.SoftDelete(context.Background(), "ghost", "admin-1")
	if !errors.Is(err, ErrProducerNotFound) {
		t.Fatalf("expected ErrProducerNotFound, got %v", err)
	}
}

func TestCreateFarmDenormalizesProducerName(t *testing.T) {
	producers := &producerRepoMock{producer: domain.Producer{ID: "prod-1", Name: "Fazendas Reunidas"}}
	farms := &farmRepoMock{}

	svc := NewFarmService(farms, producers, nil, nil)

	farm, err := svc.Create(context.Background(), CreateFarmInput{
		Name:           "Sitio Boa Vista",
		City:           "Uberaba",
		State:          "MG",
		TotalArea:      100,
		ArableArea:     60,
		VegetationArea: 40,
		ProducerID:     "prod-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if farm.ProducerName != "Fazendas Reunidas" {
		t.Fatalf("expected producer name copied, got %q", farm.ProducerName)
	}
	if len(farms.created) != 1 {
		t.Fatalf("expected one persisted row, got %d", len(farms.created))
	}
}

func TestCreateFarmRejectsAreaOverflow(t *testing.T) {
	producers := &producerRepoMock{producer: domain.Producer{ID: "prod-1"}}

	svc := NewFarmService(&farmRepoMock{}, producers, nil, nil)

	_, err := svc.Create(context.Background(), CreateFarmInput{
		Name:           "Sitio Boa Vista",
		TotalArea:      100,
		ArableArea:     70,
		VegetationArea: 40,
		ProducerID:     "prod-1",
	})
	if !errors.Is(err, domain.ErrInvalidFarmAreas) {
		t.Fatalf("expected ErrInvalidFarmAreas, got %v", err)
	}
}

func TestCreateFarmUnknownProducer(t *testing.T) {
	svc := NewFarmService(&farmRepoMock{}, &producerRepoMock{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateFarmInput{
		Name:       "Sitio Boa Vista",
		TotalArea:  10,
		ProducerID: "ghost",
	})
	if !errors.Is(err, ErrProducerNotFound) {
		t.Fatalf("expected ErrProducerNotFound, got %v", err)
	}
}

func TestUpdateFarmRevalidatesMergedAreas(t *testing.T) {
	farms := &farmRepoMock{farm: domain.Farm{
		ID:             "farm-1",
		Name:           "Sitio Boa Vista",
		TotalArea:      100,
		ArableArea:     60,
		VegetationArea: 40,
		ProducerID:     "prod-1",
	}}

	svc := NewFarmService(farms, &producerRepoMock{}, nil, nil)

	smaller := 80.0
	_, err := svc.Update(context.Background(), "farm-1", UpdateFarmInput{TotalArea: &smaller})
	if !errors.Is(err, domain.ErrInvalidFarmAreas) {
		t.Fatalf("expected shrinking below the parts to fail, got %v", err)
	}
	if len(farms.updated) != 0 {
		t.Fatal("expected no write after a failed validation")
	}
}

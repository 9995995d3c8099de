package personnel_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/catalog"
	"github.com/frahmantamala/personnel-records/internal/core/events"
	"github.com/frahmantamala/personnel-records/internal/personnel"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPersonnel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Personnel Suite")
}

type MockRepository struct {
	records map[int64]*personnel.Personnel
	nextID  int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{records: make(map[int64]*personnel.Personnel), nextID: 1}
}

func (m *MockRepository) List(ctx context.Context, filter personnel.Filter) ([]*personnel.Personnel, error) {
	var out []*personnel.Personnel
	for i := int64(1); i < m.nextID; i++ {
		if p, ok := m.records[i]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*personnel.Personnel, error) {
	p, ok := m.records[id]
	if !ok {
		return nil, personnel.ErrPersonnelNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockRepository) Create(ctx context.Context, p *personnel.Personnel) error {
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.records[p.ID] = &cp
	return nil
}

func (m *MockRepository) Update(ctx context.Context, p *personnel.Personnel) error {
	if _, ok := m.records[p.ID]; !ok {
		return personnel.ErrPersonnelNotFound
	}
	cp := *p
	m.records[p.ID] = &cp
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.records[id]; !ok {
		return personnel.ErrPersonnelNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MockRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	for id, p := range m.records {
		if id != excludeID && p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) ExistsByIDDocument(ctx context.Context, doc string, excludeID int64) (bool, error) {
	for id, p := range m.records {
		if id != excludeID && p.IDDocument == doc {
			return true, nil
		}
	}
	return false, nil
}

type fakeReferences struct {
	known map[catalog.Kind]map[int64]bool
}

func (f *fakeReferences) Exists(ctx context.Context, kind catalog.Kind, id int64) (bool, error) {
	return f.known[kind][id], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

var _ = Describe("Personnel Service", func() {
	var (
		ctx       context.Context
		repo      *MockRepository
		publisher *recordingPublisher
		service   *personnel.Service
		admin     *auth.Actor
		officer   *auth.Actor
		viewer    *auth.Actor
		input     personnel.PersonnelInput
	)

	BeforeEach(func() {
		ctx = context.Background()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = NewMockRepository()
		publisher = &recordingPublisher{}
		refs := &fakeReferences{known: map[catalog.Kind]map[int64]bool{
			catalog.KindRank:       {1: true, 2: true},
			catalog.KindUnit:       {1: true},
			catalog.KindStatusType: {1: true},
		}}
		service = personnel.NewService(repo, refs, auth.NewGuard(lg), publisher, lg)

		admin = &auth.Actor{ID: 1, Username: "admin", Role: auth.RoleAdministrator, Active: true}
		officer = &auth.Actor{ID: 2, Username: "officer", Role: auth.RoleAdministrativeOfficer, Active: true}
		viewer = &auth.Actor{ID: 3, Username: "4567890", Role: auth.RoleAuthorizedUser, Active: true}

		input = personnel.PersonnelInput{
			Code:               "P-001",
			IDDocument:         "4567890",
			FirstNames:         "Juan Carlos",
			PaternalSurname:    "Mamani",
			MaternalSurname:    "Quispe",
			Gender:             personnel.GenderMale,
			RankID:             int64Ptr(1),
			UnitID:             int64Ptr(1),
			StatusID:           int64Ptr(1),
			InstitutionalEmail: "jmamani@policia.bo",
		}
	})

	Describe("Create", func() {
		It("stores the record, defaults issued-in and publishes personnel.created", func() {
			p, err := service.Create(ctx, officer, input)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(int64(1)))
			Expect(p.IssuedIn).To(Equal(personnel.DefaultIssuedIn))
			Expect(p.IsActive).To(BeTrue())
			Expect(*p.CreatedBy).To(Equal(officer.ID))

			Expect(publisher.events).To(HaveLen(1))
			created, ok := publisher.events[0].(*events.PersonnelCreatedEvent)
			Expect(ok).To(BeTrue())
			Expect(created.PersonnelID).To(Equal(p.ID))
			Expect(created.ActorID).To(Equal(officer.ID))
			Expect(created.LastNames).To(Equal("Mamani Quispe"))
			Expect(created.InstitutionalEmail).To(Equal("jmamani@policia.bo"))
		})

		It("is forbidden for authorized users", func() {
			_, err := service.Create(ctx, viewer, input)
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
			Expect(publisher.events).To(BeEmpty())
		})

		It("rejects a duplicate id document with conflict", func() {
			_, err := service.Create(ctx, officer, input)
			Expect(err).NotTo(HaveOccurred())

			input.Code = "P-002"
			_, err = service.Create(ctx, officer, input)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateIdentity))
		})

		It("rejects unknown catalog references with not found", func() {
			input.RankID = int64Ptr(99)
			_, err := service.Create(ctx, officer, input)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})

		It("rejects future birth dates", func() {
			future := time.Now().AddDate(1, 0, 0)
			input.BirthDate = &future
			_, err := service.Create(ctx, officer, input)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDate))
		})

		It("rejects an unknown gender", func() {
			input.Gender = "X"
			_, err := service.Create(ctx, officer, input)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		BeforeEach(func() {
			_, err := service.Create(ctx, officer, input)
			Expect(err).NotTo(HaveOccurred())
			publisher.events = nil
		})

		It("publishes before and after placements", func() {
			input.RankID = int64Ptr(2)
			p, err := service.Update(ctx, officer, 1, input)
			Expect(err).NotTo(HaveOccurred())
			Expect(*p.RankID).To(Equal(int64(2)))

			Expect(publisher.events).To(HaveLen(1))
			updated, ok := publisher.events[0].(*events.PersonnelUpdatedEvent)
			Expect(ok).To(BeTrue())
			Expect(*updated.Before.RankID).To(Equal(int64(1)))
			Expect(*updated.After.RankID).To(Equal(int64(2)))
		})

		It("keeps the active flag when omitted", func() {
			inactive := false
			input.IsActive = &inactive
			_, err := service.Update(ctx, officer, 1, input)
			Expect(err).NotTo(HaveOccurred())

			input.IsActive = nil
			p, err := service.Update(ctx, officer, 1, input)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.IsActive).To(BeFalse())
		})

		It("returns not found for unknown ids", func() {
			_, err := service.Update(ctx, officer, 77, input)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("Read and Delete", func() {
		BeforeEach(func() {
			_, err := service.Create(ctx, officer, input)
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets any authenticated actor read", func() {
			list, err := service.List(ctx, viewer, personnel.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))

			p, err := service.Get(ctx, viewer, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.FullName()).To(Equal("Juan Carlos Mamani Quispe"))
		})

		It("denies anonymous reads", func() {
			_, err := service.List(ctx, nil, personnel.Filter{})
			Expect(internal.IsType(err, internal.ErrorTypeUnauthenticated)).To(BeTrue())
		})

		It("reserves delete for administrators", func() {
			Expect(internal.IsType(service.Delete(ctx, officer, 1), internal.ErrorTypeForbidden)).To(BeTrue())
			Expect(service.Delete(ctx, admin, 1)).To(Succeed())

			exists, err := service.Exists(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})
})

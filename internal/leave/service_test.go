package leave_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/core/events"
	"github.com/frahmantamala/personnel-records/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLeave(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Suite")
}

// memoryRepository applies Transition atomically under its mutex, which is
// the same guarantee the conditional UPDATE gives in the database.
type memoryRepository struct {
	mu       sync.Mutex
	requests map[int64]leave.Request
	nextID   int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{requests: make(map[int64]leave.Request), nextID: 1}
}

func (m *memoryRepository) Create(ctx context.Context, req *leave.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.nextID
	m.nextID++
	req.CreatedAt = time.Now()
	m.requests[req.ID] = *req
	return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id int64) (*leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	return &req, nil
}

func (m *memoryRepository) List(ctx context.Context, filter leave.Filter) ([]*leave.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*leave.Request
	for id := m.nextID - 1; id >= 1; id-- {
		req, ok := m.requests[id]
		if !ok {
			continue
		}
		if filter.PersonnelID != nil && req.PersonnelID != *filter.PersonnelID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, &req)
	}
	return out, nil
}

func (m *memoryRepository) UpdatePending(ctx context.Context, req *leave.Request) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[req.ID]
	if !ok || stored.Status != leave.StatusPending {
		return false, nil
	}
	m.requests[req.ID] = *req
	return true, nil
}

func (m *memoryRepository) Transition(ctx context.Context, id int64, from leave.Status, t leave.Transition) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[id]
	if !ok || stored.Status != from {
		return false, nil
	}
	decidedBy := t.DecidedBy
	decidedAt := t.DecidedAt
	stored.Status = t.To
	stored.ApproverID = t.ApproverID
	stored.DecidedBy = &decidedBy
	stored.DecidedAt = &decidedAt
	stored.DecisionNotes = t.Notes
	m.requests[id] = stored
	return true, nil
}

func (m *memoryRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return leave.ErrRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

// forceStatus puts a request straight into a state for setup.
func (m *memoryRepository) forceStatus(id int64, status leave.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req := m.requests[id]
	req.Status = status
	m.requests[id] = req
}

type knownPersonnel map[int64]bool

func (k knownPersonnel) Exists(ctx context.Context, id int64) (bool, error) {
	return k[id], nil
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

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("Leave duration", func() {
	It("counts a single day as one", func() {
		Expect(leave.DurationDays(day(2024, 1, 10), day(2024, 1, 10))).To(Equal(1))
	})

	It("counts both ends of the range", func() {
		Expect(leave.DurationDays(day(2024, 1, 10), day(2024, 1, 19))).To(Equal(10))
	})

	It("ignores the time of day", func() {
		start := time.Date(2024, 1, 10, 18, 30, 0, 0, time.UTC)
		end := time.Date(2024, 1, 11, 6, 0, 0, 0, time.UTC)
		Expect(leave.DurationDays(start, end)).To(Equal(2))
	})

	It("spans month and leap-day boundaries", func() {
		Expect(leave.DurationDays(day(2024, 2, 27), day(2024, 3, 1))).To(Equal(4))
	})
})

var _ = Describe("Leave Service", func() {
	var (
		ctx        context.Context
		repo       *memoryRepository
		publisher  *recordingPublisher
		service    *leave.Service
		admin      *auth.Actor
		officer    *auth.Actor
		officerTwo *auth.Actor
		viewer     *auth.Actor
		submit     leave.SubmitDTO
	)

	BeforeEach(func() {
		ctx = context.Background()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo = newMemoryRepository()
		publisher = &recordingPublisher{}
		service = leave.NewService(repo, knownPersonnel{1: true}, auth.NewGuard(lg), publisher, lg)

		admin = &auth.Actor{ID: 1, Username: "admin", Role: auth.RoleAdministrator, Active: true}
		officer = &auth.Actor{ID: 2, Username: "officer", Role: auth.RoleAdministrativeOfficer, Active: true}
		officerTwo = &auth.Actor{ID: 5, Username: "officer2", Role: auth.RoleAdministrativeOfficer, Active: true}
		viewer = &auth.Actor{ID: 3, Username: "4567890", Role: auth.RoleAuthorizedUser, Active: true}

		submit = leave.SubmitDTO{
			PersonnelID: 1,
			LeaveType:   leave.TypeVacation,
			StartDate:   day(2024, 1, 10),
			EndDate:     day(2024, 1, 14),
			Motive:      "Vacaciones de gestión",
		}
	})

	Describe("Submit", func() {
		It("creates a pending request with an inclusive duration", func() {
			req, err := service.Submit(ctx, officer, submit)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusPending))
			Expect(req.DurationDays).To(Equal(5))
			Expect(req.CreatedBy).To(Equal(officer.ID))
			Expect(req.ApproverID).To(BeNil())
		})

		It("rejects an end date before the start date and stores nothing", func() {
			submit.EndDate = day(2024, 1, 9)
			_, err := service.Submit(ctx, officer, submit)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDateRange))
			Expect(repo.requests).To(BeEmpty())
		})

		It("requires a motive", func() {
			submit.Motive = " "
			_, err := service.Submit(ctx, officer, submit)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("rejects unknown personnel with not found", func() {
			submit.PersonnelID = 42
			_, err := service.Submit(ctx, officer, submit)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})

		It("is forbidden for authorized users", func() {
			_, err := service.Submit(ctx, viewer, submit)
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		})
	})

	Describe("Decide", func() {
		var pending *leave.Request

		BeforeEach(func() {
			var err error
			pending, err = service.Submit(ctx, officer, submit)
			Expect(err).NotTo(HaveOccurred())
		})

		It("approves, stamps the approver and publishes leave.approved", func() {
			before := time.Now()
			req, err := service.Decide(ctx, officer, pending.ID, leave.DecideDTO{Outcome: leave.OutcomeApproved, Notes: "ok"})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusApproved))
			Expect(*req.ApproverID).To(Equal(officer.ID))
			Expect(*req.DecidedAt).To(BeTemporally(">=", before))
			Expect(req.DecisionNotes).To(Equal("ok"))

			Expect(publisher.count()).To(Equal(1))
			approved, ok := publisher.events[0].(*events.LeaveApprovedEvent)
			Expect(ok).To(BeTrue())
			Expect(approved.DurationDays).To(Equal(5))
			Expect(approved.ApproverID).To(Equal(officer.ID))
		})

		It("rejects, records who decided and keeps the notes", func() {
			req, err := service.Decide(ctx, admin, pending.ID, leave.DecideDTO{Outcome: leave.OutcomeRejected, Notes: "sin respaldo"})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusRejected))
			Expect(req.ApproverID).To(BeNil())
			Expect(*req.DecidedBy).To(Equal(admin.ID))
			Expect(req.DecisionNotes).To(Equal("sin respaldo"))
			Expect(publisher.count()).To(Equal(0))
		})

		It("is forbidden for authorized users on a pending request", func() {
			_, err := service.Decide(ctx, viewer, pending.ID, leave.DecideDTO{Outcome: leave.OutcomeApproved})
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())

			stored, _ := repo.GetByID(ctx, pending.ID)
			Expect(stored.Status).To(Equal(leave.StatusPending))
		})

		It("answers forbidden to authorized users even with a malformed outcome", func() {
			_, err := service.Decide(ctx, viewer, pending.ID, leave.DecideDTO{Outcome: "x"})
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())

			_, err = service.Decide(ctx, officer, pending.ID, leave.DecideDTO{Outcome: "x"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("requires authentication", func() {
			_, err := service.Decide(ctx, nil, pending.ID, leave.DecideDTO{Outcome: leave.OutcomeApproved})
			Expect(internal.IsType(err, internal.ErrorTypeUnauthenticated)).To(BeTrue())
		})

		It("returns not found for unknown requests", func() {
			_, err := service.Decide(ctx, officer, 404, leave.DecideDTO{Outcome: leave.OutcomeApproved})
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})

		DescribeTable("refuses to re-decide a settled request for every role",
			func(settled leave.Status, role auth.Role, outcome leave.Outcome) {
				repo.forceStatus(pending.ID, settled)
				actor := &auth.Actor{ID: 9, Username: "x", Role: role, Active: true}

				_, err := service.Decide(ctx, actor, pending.ID, leave.DecideDTO{Outcome: outcome})
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidTransition))
				details, ok := appErr.Details.(internal.TransitionDetails)
				Expect(ok).To(BeTrue())
				Expect(details.From).To(Equal(string(settled)))

				stored, _ := repo.GetByID(ctx, pending.ID)
				Expect(stored.Status).To(Equal(settled))
			},
			Entry("approved by admin", leave.StatusApproved, auth.RoleAdministrator, leave.OutcomeRejected),
			Entry("approved by officer", leave.StatusApproved, auth.RoleAdministrativeOfficer, leave.OutcomeApproved),
			Entry("approved by authorized user", leave.StatusApproved, auth.RoleAuthorizedUser, leave.OutcomeApproved),
			Entry("rejected by admin", leave.StatusRejected, auth.RoleAdministrator, leave.OutcomeApproved),
			Entry("rejected by authorized user", leave.StatusRejected, auth.RoleAuthorizedUser, leave.OutcomeRejected),
			Entry("cancelled by officer", leave.StatusCancelled, auth.RoleAdministrativeOfficer, leave.OutcomeApproved),
		)

		It("lets exactly one of two concurrent approvers win", func() {
			const rounds = 20
			for i := 0; i < rounds; i++ {
				req, err := service.Submit(ctx, officer, submit)
				Expect(err).NotTo(HaveOccurred())

				var (
					wg       sync.WaitGroup
					start    = make(chan struct{})
					errs     = make([]error, 2)
					deciders = []*auth.Actor{officer, officerTwo}
				)
				for j, actor := range deciders {
					wg.Add(1)
					go func(j int, actor *auth.Actor) {
						defer GinkgoRecover()
						defer wg.Done()
						<-start
						_, errs[j] = service.Decide(ctx, actor, req.ID, leave.DecideDTO{Outcome: leave.OutcomeApproved})
					}(j, actor)
				}
				close(start)
				wg.Wait()

				succeeded := 0
				for _, err := range errs {
					if err == nil {
						succeeded++
						continue
					}
					Expect(internal.IsType(err, internal.ErrorTypeInvalidTransition)).To(BeTrue())
				}
				Expect(succeeded).To(Equal(1))
			}
		})
	})

	Describe("Cancel", func() {
		var pending *leave.Request

		BeforeEach(func() {
			var err error
			pending, err = service.Submit(ctx, officer, submit)
			Expect(err).NotTo(HaveOccurred())
		})

		It("cancels a pending request", func() {
			req, err := service.Cancel(ctx, officer, pending.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusCancelled))
		})

		It("refuses to cancel an approved request", func() {
			_, err := service.Decide(ctx, officer, pending.ID, leave.DecideDTO{Outcome: leave.OutcomeApproved})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Cancel(ctx, admin, pending.ID)
			Expect(internal.IsType(err, internal.ErrorTypeInvalidTransition)).To(BeTrue())
		})

		It("is forbidden for authorized users", func() {
			_, err := service.Cancel(ctx, viewer, pending.ID)
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("recomputes the duration while pending", func() {
			req, err := service.Submit(ctx, officer, submit)
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.Update(ctx, officer, req.ID, leave.UpdateDTO{
				LeaveType: leave.TypeMedical,
				StartDate: day(2024, 1, 10),
				EndDate:   day(2024, 1, 19),
				Motive:    "Reposo médico",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.DurationDays).To(Equal(10))
			Expect(updated.LeaveType).To(Equal(leave.TypeMedical))
		})

		It("refuses edits once decided", func() {
			req, err := service.Submit(ctx, officer, submit)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Decide(ctx, officer, req.ID, leave.DecideDTO{Outcome: leave.OutcomeRejected})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(ctx, officer, req.ID, leave.UpdateDTO{
				LeaveType: leave.TypeMedical,
				StartDate: day(2024, 1, 10),
				EndDate:   day(2024, 1, 11),
				Motive:    "x",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInvalidTransition))
			Expect(appErr.Details).To(Equal(internal.TransitionDetails{From: "rechazado", Attempted: "edit"}))
		})
	})

	Describe("List and Delete", func() {
		It("filters by status and reserves delete for administrators", func() {
			first, err := service.Submit(ctx, officer, submit)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Submit(ctx, officer, submit)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Decide(ctx, officer, first.ID, leave.DecideDTO{Outcome: leave.OutcomeApproved})
			Expect(err).NotTo(HaveOccurred())

			pending := leave.StatusPending
			list, err := service.List(ctx, viewer, leave.Filter{Status: &pending})
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))

			Expect(internal.IsType(service.Delete(ctx, officer, first.ID), internal.ErrorTypeForbidden)).To(BeTrue())
			Expect(service.Delete(ctx, admin, first.ID)).To(Succeed())
			_, err = service.Get(ctx, viewer, first.ID)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})
})

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/personnel-records/internal/leave"
	"github.com/frahmantamala/personnel-records/internal/leave/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLeavePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Postgres Suite")
}

var _ = Describe("LeaveRepository", func() {
	var (
		ctx  context.Context
		repo leave.Repository
		req  *leave.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&leave.Request{})).To(Succeed())
		repo = postgres.NewLeaveRepository(db)

		req = &leave.Request{
			PersonnelID: 1,
			LeaveType:   leave.TypePersonal,
			Motive:      "Trámite personal",
			Status:      leave.StatusPending,
			CreatedBy:   2,
		}
		req.SetDates(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC))
		Expect(repo.Create(ctx, req)).To(Succeed())
	})

	It("swaps the status only once", func() {
		approver := int64(2)
		t := leave.Transition{To: leave.StatusApproved, ApproverID: &approver, DecidedBy: 2, DecidedAt: time.Now(), Notes: "ok"}

		swapped, err := repo.Transition(ctx, req.ID, leave.StatusPending, t)
		Expect(err).NotTo(HaveOccurred())
		Expect(swapped).To(BeTrue())

		t.To = leave.StatusRejected
		swapped, err = repo.Transition(ctx, req.ID, leave.StatusPending, t)
		Expect(err).NotTo(HaveOccurred())
		Expect(swapped).To(BeFalse())

		stored, err := repo.GetByID(ctx, req.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Status).To(Equal(leave.StatusApproved))
		Expect(*stored.ApproverID).To(Equal(approver))
		Expect(stored.DecidedAt).NotTo(BeNil())
		Expect(stored.DurationDays).To(Equal(3))
	})

	It("updates editable fields only while pending", func() {
		req.Motive = "Trámite familiar"
		updated, err := repo.UpdatePending(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated).To(BeTrue())

		_, err = repo.Transition(ctx, req.ID, leave.StatusPending, leave.Transition{To: leave.StatusCancelled, DecidedBy: 2, DecidedAt: time.Now()})
		Expect(err).NotTo(HaveOccurred())

		req.Motive = "otra cosa"
		updated, err = repo.UpdatePending(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated).To(BeFalse())

		stored, err := repo.GetByID(ctx, req.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Motive).To(Equal("Trámite familiar"))
	})

	It("filters by personnel and status", func() {
		other := &leave.Request{PersonnelID: 2, LeaveType: leave.TypeMedical, Motive: "x", Status: leave.StatusPending, CreatedBy: 2}
		other.SetDates(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
		Expect(repo.Create(ctx, other)).To(Succeed())

		personnelID := int64(2)
		list, err := repo.List(ctx, leave.Filter{PersonnelID: &personnelID})
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
		Expect(list[0].ID).To(Equal(other.ID))

		approved := leave.StatusApproved
		list, err = repo.List(ctx, leave.Filter{Status: &approved})
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(BeEmpty())
	})
})

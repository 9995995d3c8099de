package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/personnel-records/internal/kardex"
	"github.com/frahmantamala/personnel-records/internal/kardex/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestKardexPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Kardex Postgres Suite")
}

var _ = Describe("KardexRepository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo kardex.Repository
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&kardex.Entry{})).To(Succeed())
		repo = postgres.NewKardexRepository(db)
	})

	add := func(personnelID int64, eventDate time.Time, description string) *kardex.Entry {
		e := &kardex.Entry{
			PersonnelID: personnelID,
			EntryType:   kardex.EntryOther,
			EventDate:   eventDate,
			Description: description,
			RecordedBy:  1,
		}
		Expect(repo.Create(ctx, e)).To(Succeed())
		return e
	}

	It("lists newest event first and breaks ties by creation order", func() {
		jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

		add(1, jan, "first january")
		add(1, mar, "march")
		add(1, jan, "second january")
		add(2, mar, "other personnel")

		list, err := repo.ListByPersonnel(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(3))
		Expect(list[0].Description).To(Equal("march"))
		Expect(list[1].Description).To(Equal("second january"))
		Expect(list[2].Description).To(Equal("first january"))
	})

	It("returns ErrEntryNotFound for unknown ids", func() {
		_, err := repo.GetByID(ctx, 404)
		Expect(err).To(MatchError(kardex.ErrEntryNotFound))
	})
})

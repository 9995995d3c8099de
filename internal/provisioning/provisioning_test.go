package provisioning_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"

	"github.com/frahmantamala/personnel-records/internal/account"
	accountPostgres "github.com/frahmantamala/personnel-records/internal/account/postgres"
	"github.com/frahmantamala/personnel-records/internal/auth"
	accountDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/account"
	personnelDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/personnel"
	"github.com/frahmantamala/personnel-records/internal/core/events"
	"github.com/frahmantamala/personnel-records/internal/provisioning"
	provisioningPostgres "github.com/frahmantamala/personnel-records/internal/provisioning/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestProvisioning(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Provisioning Suite")
}

type memoryAccounts struct {
	mu       sync.Mutex
	created  []*account.Account
	hashes   []string
	linked   map[int64]bool
	failWith error
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{linked: map[int64]bool{}}
}

func (m *memoryAccounts) ExistsForPersonnel(ctx context.Context, personnelID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.linked[personnelID], nil
}

func (m *memoryAccounts) Create(ctx context.Context, a *account.Account, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	a.ID = int64(len(m.created) + 1)
	m.created = append(m.created, a)
	m.hashes = append(m.hashes, hash)
	m.linked[*a.PersonnelID] = true
	return nil
}

func (m *memoryAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

var _ = Describe("Provisioner", func() {
	var (
		ctx       context.Context
		lg        *slog.Logger
		accounts  *memoryAccounts
		candidate provisioning.Candidate
	)

	BeforeEach(func() {
		ctx = context.Background()
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
		accounts = newMemoryAccounts()
		candidate = provisioning.Candidate{
			PersonnelID:        7,
			IDDocument:         "4567890",
			FirstNames:         "Juan Carlos",
			LastNames:          "Perez Mamani",
			Phone:              "70012345",
			InstitutionalEmail: "jperez@policia.bo",
		}
	})

	It("creates an authorized user named after the id document with a forced reset", func() {
		p := provisioning.NewProvisioner(accounts, provisioning.Config{BcryptCost: bcrypt.MinCost}, lg)
		result, err := p.Provision(ctx, candidate)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Outcome).To(Equal(provisioning.OutcomeCreated))
		Expect(result.Username).To(Equal("4567890"))
		Expect(result.Credential).To(HaveLen(12))

		created := accounts.created[0]
		Expect(created.Role).To(Equal(auth.RoleAuthorizedUser))
		Expect(created.MustResetPassword).To(BeTrue())
		Expect(created.Email).To(Equal("jperez@policia.bo"))
		Expect(*created.PersonnelID).To(Equal(int64(7)))
		Expect(bcrypt.CompareHashAndPassword([]byte(accounts.hashes[0]), []byte(result.Credential))).To(Succeed())
	})

	It("uses the reversed id document only when legacy credentials are enabled", func() {
		p := provisioning.NewProvisioner(accounts, provisioning.Config{LegacyCredentials: true, BcryptCost: bcrypt.MinCost}, lg)
		result, err := p.Provision(ctx, candidate)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Credential).To(Equal("0987654"))
		Expect(accounts.created[0].MustResetPassword).To(BeTrue())
	})

	It("skips records without an institutional email", func() {
		candidate.InstitutionalEmail = "  "
		p := provisioning.NewProvisioner(accounts, provisioning.Config{BcryptCost: bcrypt.MinCost}, lg)
		result, err := p.Provision(ctx, candidate)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Outcome).To(Equal(provisioning.OutcomeSkippedEmail))
		Expect(accounts.count()).To(BeZero())
	})

	It("skips records that already have an account", func() {
		accounts.linked[7] = true
		p := provisioning.NewProvisioner(accounts, provisioning.Config{BcryptCost: bcrypt.MinCost}, lg)
		result, err := p.Provision(ctx, candidate)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Outcome).To(Equal(provisioning.OutcomeSkippedLinked))
	})

	It("returns storage failures to the caller", func() {
		accounts.failWith = errors.New("connection reset")
		p := provisioning.NewProvisioner(accounts, provisioning.Config{BcryptCost: bcrypt.MinCost}, lg)
		result, err := p.Provision(ctx, candidate)
		Expect(err).To(MatchError(ContainSubstring("connection reset")))
		Expect(result.Outcome).To(Equal(provisioning.OutcomeFailed))
	})

	Describe("Pool", func() {
		It("provisions from personnel.created events off the publishing goroutine", func() {
			p := provisioning.NewProvisioner(accounts, provisioning.Config{BcryptCost: bcrypt.MinCost}, lg)
			pool := provisioning.NewPool(p, provisioning.PoolConfig{Workers: 2, QueueSize: 8}, lg)
			defer pool.Shutdown()

			bus := events.NewEventBus(lg)
			pool.Subscribe(bus)

			for i := int64(1); i <= 3; i++ {
				Expect(bus.Publish(ctx, events.NewPersonnelCreatedEvent(events.PersonnelCreatedEvent{
					PersonnelID:        i,
					ActorID:            1,
					IDDocument:         strconv.FormatInt(1000+i, 10),
					InstitutionalEmail: "p@policia.bo",
				}))).To(Succeed())
			}
			bus.Wait()
			pool.Drain()

			Expect(accounts.count()).To(Equal(3))
		})

		It("reports failures through Do without panicking the worker", func() {
			accounts.failWith = errors.New("unique violation")
			p := provisioning.NewProvisioner(accounts, provisioning.Config{BcryptCost: bcrypt.MinCost}, lg)
			pool := provisioning.NewPool(p, provisioning.PoolConfig{Workers: 1, QueueSize: 1}, lg)
			defer pool.Shutdown()

			_, err := pool.Do(ctx, candidate)
			Expect(err).To(HaveOccurred())

			accounts.failWith = nil
			result, err := pool.Do(ctx, candidate)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Outcome).To(Equal(provisioning.OutcomeCreated))
		})
	})

	Describe("Backfill", func() {
		It("provisions every eligible personnel record once", func() {
			db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
				Logger:         logger.Default.LogMode(logger.Silent),
				TranslateError: true,
			})
			Expect(err).NotTo(HaveOccurred())
			sqlDB, err := db.DB()
			Expect(err).NotTo(HaveOccurred())
			sqlDB.SetMaxOpenConns(1)
			Expect(db.AutoMigrate(&personnelDatamodel.Personnel{}, &accountDatamodel.Account{})).To(Succeed())

			rows := []personnelDatamodel.Personnel{
				{Code: "P-1", IDDocument: "111", FirstNames: "Ana", PaternalSurname: "Quispe", InstitutionalEmail: "ana@policia.bo", IsActive: true},
				{Code: "P-2", IDDocument: "222", FirstNames: "Luis", PaternalSurname: "Rojas", IsActive: true},
				{Code: "P-3", IDDocument: "333", FirstNames: "Eva", PaternalSurname: "Choque", MaternalSurname: "Flores", InstitutionalEmail: "eva@policia.bo", IsActive: true},
			}
			Expect(db.Create(&rows).Error).To(Succeed())

			p := provisioning.NewProvisioner(accountPostgres.NewAccountRepository(db), provisioning.Config{BcryptCost: bcrypt.MinCost}, lg)
			pool := provisioning.NewPool(p, provisioning.PoolConfig{Workers: 2, QueueSize: 4}, lg)
			defer pool.Shutdown()
			source := provisioningPostgres.NewCandidateRepository(db)

			var issued []string
			report, err := provisioning.Backfill(ctx, source, pool, lg, func(_ provisioning.Candidate, r provisioning.Result) {
				issued = append(issued, r.Username)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(report).To(Equal(provisioning.BackfillReport{Created: 2}))
			Expect(issued).To(HaveLen(2))
			Expect(issued).To(ContainElement("333"))

			var eva accountDatamodel.Account
			Expect(db.Where("username = ?", "333").First(&eva).Error).To(Succeed())
			Expect(eva.LastName).To(Equal("Choque Flores"))
			Expect(*eva.PersonnelID).To(Equal(rows[2].ID))

			again, err := provisioning.Backfill(ctx, source, pool, lg, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(provisioning.BackfillReport{}))
		})
	})
})

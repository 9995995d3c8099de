package sysconfig_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	sysconfigDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/sysconfig"
	"github.com/frahmantamala/personnel-records/internal/sysconfig"
	sysconfigPostgres "github.com/frahmantamala/personnel-records/internal/sysconfig/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSysconfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "System Config Suite")
}

var _ = Describe("System configuration", func() {
	var (
		ctx     context.Context
		service *sysconfig.Service
		admin   *auth.Actor
		officer *auth.Actor
	)

	BeforeEach(func() {
		ctx = context.Background()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&sysconfigDatamodel.SystemConfig{})).To(Succeed())

		service = sysconfig.NewService(sysconfigPostgres.NewSystemConfigRepository(db), auth.NewGuard(lg), lg)
		admin = &auth.Actor{ID: 1, Role: auth.RoleAdministrator, Active: true}
		officer = &auth.Actor{ID: 2, Role: auth.RoleAdministrativeOfficer, Active: true}
	})

	It("answers not found before the row exists and falls back to the default timeout", func() {
		_, err := service.Get(ctx, officer)
		Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		Expect(service.SessionTimeout(ctx)).To(Equal(60 * time.Minute))
		Expect(service.UnderMaintenance(ctx)).To(BeFalse())
	})

	It("creates the singleton with defaults and rejects a second create", func() {
		c, err := service.Create(ctx, admin, sysconfig.Input{})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.InstitutionName).To(Equal(sysconfig.DefaultInstitutionName))
		Expect(c.SessionTimeoutMinutes).To(Equal(sysconfig.DefaultSessionTimeoutMinutes))

		_, err = service.Create(ctx, admin, sysconfig.Input{})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		Expect(appErr.Code).To(Equal(internal.ErrCodeSingletonExists))
	})

	It("reserves writes for administrators", func() {
		_, err := service.Create(ctx, officer, sysconfig.Input{})
		Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
	})

	It("applies partial updates and refreshes the session policy", func() {
		_, err := service.Create(ctx, admin, sysconfig.Input{})
		Expect(err).NotTo(HaveOccurred())

		minutes, maintenance := 15, true
		updated, err := service.Update(ctx, admin, sysconfig.Input{SessionTimeoutMinutes: &minutes, Maintenance: &maintenance})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.InstitutionName).To(Equal(sysconfig.DefaultInstitutionName))
		Expect(*updated.UpdatedBy).To(Equal(admin.ID))

		Expect(service.SessionTimeout(ctx)).To(Equal(15 * time.Minute))
		Expect(service.UnderMaintenance(ctx)).To(BeTrue())

		read, err := service.Get(ctx, officer)
		Expect(err).NotTo(HaveOccurred())
		Expect(read.Maintenance).To(BeTrue())
	})

	DescribeTable("bounds the session timeout",
		func(minutes int, valid bool) {
			err := sysconfig.Input{SessionTimeoutMinutes: &minutes}.Validate()
			if valid {
				Expect(err).To(BeNil())
			} else {
				Expect(err).NotTo(BeNil())
			}
		},
		Entry("below minimum", 4, false),
		Entry("minimum", 5, true),
		Entry("maximum", 1440, true),
		Entry("above maximum", 1441, false),
	)
})

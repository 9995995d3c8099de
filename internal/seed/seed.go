// Package seed loads the reference catalogs, the system configuration row
// and a bootstrap administrator. Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/catalog"
	accountDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/account"
	sysconfigDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/sysconfig"
	"github.com/frahmantamala/personnel-records/internal/sysconfig"
	"gorm.io/gorm"
)

var ranks = []catalog.Rank{
	{Name: "General", Abbreviation: "GRAL", SortOrder: 1},
	{Name: "Coronel", Abbreviation: "CRNL", SortOrder: 2},
	{Name: "Teniente Coronel", Abbreviation: "TCNL", SortOrder: 3},
	{Name: "Mayor", Abbreviation: "MY", SortOrder: 4},
	{Name: "Capitán", Abbreviation: "CAP", SortOrder: 5},
	{Name: "Teniente", Abbreviation: "TTE", SortOrder: 6},
	{Name: "Subteniente", Abbreviation: "STTE", SortOrder: 7},
	{Name: "Sargento Primero", Abbreviation: "SGTO 1RO", SortOrder: 8},
	{Name: "Sargento Segundo", Abbreviation: "SGTO 2DO", SortOrder: 9},
	{Name: "Cabo", Abbreviation: "CBO", SortOrder: 10},
	{Name: "Policía", Abbreviation: "PLC", SortOrder: 11},
}

var units = []catalog.Unit{
	{Code: "UTEPPI", Name: "Unidad de Tecnología Policial de Prevención e Investigación"},
	{Code: "FELCC", Name: "Fuerza Especial de Lucha Contra el Crimen"},
	{Code: "FELCV", Name: "Fuerza Especial de Lucha Contra la Violencia"},
	{Code: "TRANSITO", Name: "Policía de Tránsito"},
}

var statuses = []catalog.StatusType{
	{Name: "Activo", Color: "#28a745"},
	{Name: "Licencia", Color: "#17a2b8"},
	{Name: "Comisión", Color: "#ffc107"},
	{Name: "Baja", Color: "#dc3545"},
	{Name: "Suspendido", Color: "#6c757d"},
}

var sanctionTypes = []catalog.SanctionType{
	{Name: "Amonestación Verbal", Severity: catalog.SeverityMinor},
	{Name: "Amonestación Escrita", Severity: catalog.SeverityMinor},
	{Name: "Suspensión Temporal", Severity: catalog.SeveritySerious},
	{Name: "Destitución", Severity: catalog.SeverityCritical},
}

var commendationTypes = []catalog.CommendationType{
	{Name: "Felicitación por Servicio", Description: "Reconocimiento por buen servicio"},
	{Name: "Felicitación por Mérito", Description: "Reconocimiento por acto meritorio"},
	{Name: "Felicitación por Antigüedad", Description: "Reconocimiento por años de servicio"},
}

// Report counts rows inserted by one run.
type Report struct {
	Catalogs      int
	SystemConfig  bool
	Administrator bool
}

type Seeder struct {
	db         *gorm.DB
	bootstrap  internal.BootstrapConfig
	bcryptCost int
	logger     *slog.Logger
}

func NewSeeder(db *gorm.DB, bootstrap internal.BootstrapConfig, bcryptCost int, logger *slog.Logger) *Seeder {
	return &Seeder{db: db, bootstrap: bootstrap, bcryptCost: bcryptCost, logger: logger}
}

func (s *Seeder) Run(ctx context.Context) (Report, error) {
	var report Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []func(*gorm.DB) (int, error){
			func(tx *gorm.DB) (int, error) {
				return seedByKey(tx, ranks, "name", func(r catalog.Rank) string { return r.Name }, func(r *catalog.Rank) { r.IsActive = true })
			},
			func(tx *gorm.DB) (int, error) {
				return seedByKey(tx, units, "code", func(u catalog.Unit) string { return u.Code }, func(u *catalog.Unit) { u.IsActive = true })
			},
			func(tx *gorm.DB) (int, error) {
				return seedByKey(tx, statuses, "name", func(st catalog.StatusType) string { return st.Name }, nil)
			},
			func(tx *gorm.DB) (int, error) {
				return seedByKey(tx, sanctionTypes, "name", func(st catalog.SanctionType) string { return st.Name }, func(st *catalog.SanctionType) { st.IsActive = true })
			},
			func(tx *gorm.DB) (int, error) {
				return seedByKey(tx, commendationTypes, "name", func(c catalog.CommendationType) string { return c.Name }, nil)
			},
		}
		for _, step := range steps {
			n, err := step(tx)
			if err != nil {
				return err
			}
			report.Catalogs += n
		}

		created, err := s.seedSystemConfig(tx)
		if err != nil {
			return err
		}
		report.SystemConfig = created

		created, err = s.seedAdministrator(tx)
		if err != nil {
			return err
		}
		report.Administrator = created
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	s.logger.Info("seed completed",
		"catalog_rows", report.Catalogs,
		"system_config", report.SystemConfig,
		"administrator", report.Administrator)
	return report, nil
}

func seedByKey[T catalog.Entry](tx *gorm.DB, rows []T, column string, key func(T) string, prepare func(*T)) (int, error) {
	inserted := 0
	for _, row := range rows {
		var count int64
		if err := tx.Model(new(T)).Where(column+" = ?", key(row)).Count(&count).Error; err != nil {
			return inserted, err
		}
		if count > 0 {
			continue
		}
		if prepare != nil {
			prepare(&row)
		}
		if err := tx.Create(&row).Error; err != nil {
			return inserted, fmt.Errorf("seed %s: %w", key(row), err)
		}
		inserted++
	}
	return inserted, nil
}

func (s *Seeder) seedSystemConfig(tx *gorm.DB) (bool, error) {
	var count int64
	if err := tx.Model(&sysconfigDatamodel.SystemConfig{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	row := &sysconfigDatamodel.SystemConfig{
		SingletonKey:          1,
		InstitutionName:       "UTEPPI - Unidad de Tecnología Policial",
		SessionTimeoutMinutes: sysconfig.DefaultSessionTimeoutMinutes,
	}
	return true, tx.Create(row).Error
}

func (s *Seeder) seedAdministrator(tx *gorm.DB) (bool, error) {
	if s.bootstrap.AdminUsername == "" {
		return false, nil
	}

	var existing accountDatamodel.Account
	err := tx.Where("username = ?", s.bootstrap.AdminUsername).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if len(s.bootstrap.AdminPassword) < auth.MinPasswordLength {
		return false, fmt.Errorf("bootstrap admin password must be at least %d characters", auth.MinPasswordLength)
	}
	hash, err := auth.HashPassword(s.bootstrap.AdminPassword, s.bcryptCost)
	if err != nil {
		return false, err
	}

	row := &accountDatamodel.Account{
		Username:          s.bootstrap.AdminUsername,
		Email:             s.bootstrap.AdminEmail,
		FirstName:         "Administrador",
		PasswordHash:      hash,
		Role:              string(auth.RoleAdministrator),
		IsActive:          true,
		MustResetPassword: true,
	}
	return true, tx.Create(row).Error
}

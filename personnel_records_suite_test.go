package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/app"
	"github.com/frahmantamala/personnel-records/internal/catalog"
	"github.com/frahmantamala/personnel-records/internal/seed"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPersonnelRecords(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PersonnelRecords Suite")
}

type client struct {
	handler http.Handler
	token   string
}

func (c client) do(method, path string, body interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
	}
	return rec.Code, out
}

func (c client) login(username, password string) client {
	status, body := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	Expect(status).To(Equal(http.StatusOK), fmt.Sprint(body))
	return client{handler: c.handler, token: body["access_token"].(string)}
}

// changePassword replaces an issued credential; the same token keeps working.
func (c client) changePassword(current, next string) {
	status, body := c.do(http.MethodPost, "/api/v1/auth/password", map[string]string{
		"current_password": current,
		"new_password":     next,
	})
	Expect(status).To(Equal(http.StatusNoContent), fmt.Sprint(body))
}

var _ = Describe("Personnel records API", func() {
	var (
		application *app.App
		anonymous   client
		db          *gorm.DB
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(app.Models()...)).To(Succeed())

		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		cfg := &internal.Config{
			Security: internal.SecurityConfig{
				AccessTokenSecret:    "access-secret-for-tests-0123456789abcdef",
				RefreshTokenSecret:   "refresh-secret-for-tests-0123456789abcdef",
				AccessTokenDuration:  15 * time.Minute,
				RefreshTokenDuration: time.Hour,
				BCryptCost:           bcrypt.MinCost,
			},
			Provisioning: internal.ProvisioningConfig{Enabled: true, Workers: 1, QueueSize: 10},
			Bootstrap: internal.BootstrapConfig{
				AdminUsername: "admin",
				AdminPassword: "admin-password",
			},
		}

		_, err = seed.NewSeeder(db, cfg.Bootstrap, bcrypt.MinCost, lg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		application = app.New(cfg, db, sqlx.NewDb(sqlDB, "sqlite3"), lg)
		anonymous = client{handler: application.Router}
	})

	AfterEach(func() {
		application.Shutdown(time.Second)
	})

	It("answers liveness without authentication", func() {
		status, body := anonymous.do(http.MethodGet, "/ping", nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(HaveKeyWithValue("status", "OK"))
	})

	It("rejects API calls without a token", func() {
		status, body := anonymous.do(http.MethodGet, "/api/v1/personnel", nil)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(HaveKey("code"))
	})

	It("holds the bootstrap administrator to a password change", func() {
		admin := anonymous.login("admin", "admin-password")

		status, body := admin.do(http.MethodGet, "/api/v1/personnel", nil)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(HaveKeyWithValue("code", "PASSWORD_RESET_REQUIRED"))

		status, body = admin.do(http.MethodGet, "/api/v1/accounts/me", nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(HaveKeyWithValue("must_reset_password", true))

		admin.changePassword("admin-password", "admin-password-2")

		status, _ = admin.do(http.MethodGet, "/api/v1/personnel", nil)
		Expect(status).To(Equal(http.StatusOK))
	})

	It("issues a credential for an auto-provisioned account", func() {
		admin := anonymous.login("admin", "admin-password")
		admin.changePassword("admin-password", "admin-password-2")

		status, body := admin.do(http.MethodPost, "/api/v1/personnel", map[string]interface{}{
			"code":                "UT-002",
			"id_document":         "1234567",
			"first_names":         "Ana",
			"paternal_surname":    "Condori",
			"institutional_email": "acondori@uteppi.bo",
		})
		Expect(status).To(Equal(http.StatusCreated), fmt.Sprint(body))
		application.Settle()

		status, body = admin.do(http.MethodGet, "/api/v1/accounts?role=usuario_autorizado", nil)
		Expect(status).To(Equal(http.StatusOK))
		items := body["items"].([]interface{})
		Expect(items).To(HaveLen(1))
		provisioned := items[0].(map[string]interface{})
		Expect(provisioned).To(HaveKeyWithValue("username", "1234567"))
		Expect(provisioned).To(HaveKeyWithValue("credential_pending", true))

		status, body = admin.do(http.MethodPost, fmt.Sprintf("/api/v1/accounts/%d/password-reset", int64(provisioned["id"].(float64))), nil)
		Expect(status).To(Equal(http.StatusOK), fmt.Sprint(body))
		password := body["one_time_password"].(string)
		Expect(password).NotTo(BeEmpty())

		status, body = anonymous.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "1234567", "password": password})
		Expect(status).To(Equal(http.StatusOK), fmt.Sprint(body))
		Expect(body).To(HaveKeyWithValue("must_reset_password", true))
		provisionedUser := client{handler: application.Router, token: body["access_token"].(string)}

		status, _ = provisionedUser.do(http.MethodGet, "/api/v1/leave-requests", nil)
		Expect(status).To(Equal(http.StatusForbidden))

		provisionedUser.changePassword(password, "nueva-clave-segura")
		status, _ = provisionedUser.do(http.MethodGet, "/api/v1/leave-requests", nil)
		Expect(status).To(Equal(http.StatusOK))
	})

	It("runs a leave request from creation to approval", func() {
		admin := anonymous.login("admin", "admin-password")
		admin.changePassword("admin-password", "admin-password-2")

		status, body := admin.do(http.MethodPost, "/api/v1/accounts", map[string]string{
			"username": "oficial",
			"password": "oficial-password",
			"role":     "oficial_administrativo",
		})
		Expect(status).To(Equal(http.StatusCreated), fmt.Sprint(body))

		status, body = admin.do(http.MethodPost, "/api/v1/accounts", map[string]string{
			"username": "usuario",
			"password": "usuario-password",
			"role":     "usuario_autorizado",
		})
		Expect(status).To(Equal(http.StatusCreated), fmt.Sprint(body))

		var unit catalog.Unit
		Expect(db.Where("code = ?", "UTEPPI").First(&unit).Error).To(Succeed())

		status, body = admin.do(http.MethodPost, "/api/v1/personnel", map[string]interface{}{
			"code":                "UT-001",
			"id_document":         "4455667",
			"first_names":         "Juan Carlos",
			"paternal_surname":    "Mamani",
			"maternal_surname":    "Quispe",
			"unit_id":             unit.ID,
			"institutional_email": "jmamani@uteppi.bo",
		})
		Expect(status).To(Equal(http.StatusCreated), fmt.Sprint(body))
		personnelID := int64(body["id"].(float64))

		officer := anonymous.login("oficial", "oficial-password")
		user := anonymous.login("usuario", "usuario-password")

		start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 7)
		status, body = officer.do(http.MethodPost, "/api/v1/leave-requests", map[string]interface{}{
			"personnel_id": personnelID,
			"leave_type":   "vacaciones",
			"start_date":   start,
			"end_date":     start.AddDate(0, 0, 4),
			"motive":       "Vacaciones de gestión",
		})
		Expect(status).To(Equal(http.StatusCreated), fmt.Sprint(body))
		Expect(body).To(HaveKeyWithValue("status", "pendiente"))
		Expect(body).To(HaveKeyWithValue("duration_days", float64(5)))
		leaveID := int64(body["id"].(float64))
		decision := fmt.Sprintf("/api/v1/leave-requests/%d/decision", leaveID)

		status, _ = user.do(http.MethodPost, decision, map[string]string{"outcome": "aprobado"})
		Expect(status).To(Equal(http.StatusForbidden))

		status, body = officer.do(http.MethodPost, decision, map[string]string{"outcome": "aprobado"})
		Expect(status).To(Equal(http.StatusOK), fmt.Sprint(body))
		Expect(body).To(HaveKeyWithValue("status", "aprobado"))
		Expect(body).To(HaveKey("approver_id"))
		Expect(body["approver_id"]).To(BeNumerically(">", 0))
		Expect(body).To(HaveKey("decided_at"))
		decidedAt, err := time.Parse(time.RFC3339Nano, body["decided_at"].(string))
		Expect(err).NotTo(HaveOccurred())
		Expect(decidedAt).To(BeTemporally("~", time.Now(), time.Minute))

		status, _ = officer.do(http.MethodPost, decision, map[string]string{"outcome": "rechazado"})
		Expect(status).To(Equal(http.StatusConflict))

		application.Settle()

		status, body = user.do(http.MethodGet, fmt.Sprintf("/api/v1/personnel/%d/kardex", personnelID), nil)
		Expect(status).To(Equal(http.StatusOK))
		entryTypes := []string{}
		for _, item := range body["items"].([]interface{}) {
			entryTypes = append(entryTypes, item.(map[string]interface{})["entry_type"].(string))
		}
		Expect(entryTypes).To(ConsistOf("alta", "permiso"))

		status, body = admin.do(http.MethodGet, "/api/v1/accounts?role=usuario_autorizado", nil)
		Expect(status).To(Equal(http.StatusOK))
		usernames := []string{}
		for _, item := range body["items"].([]interface{}) {
			usernames = append(usernames, item.(map[string]interface{})["username"].(string))
		}
		Expect(usernames).To(ConsistOf("4455667", "usuario"))
	})
})

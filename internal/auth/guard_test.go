package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Guard", func() {
	var (
		guard   *Guard
		ctx     context.Context
		officer *Actor
		viewer  *Actor
	)

	ginkgo.BeforeEach(func() {
		guard = NewGuard(discardLogger())
		ctx = context.Background()
		officer = &Actor{ID: 2, Username: "officer", Role: RoleAdministrativeOfficer, Active: true}
		viewer = &Actor{ID: 3, Username: "viewer", Role: RoleAuthorizedUser, Active: true}
	})

	ginkgo.Describe("Authorize", func() {
		ginkgo.It("should allow a capability the role holds", func() {
			gomega.Expect(guard.Authorize(ctx, officer, CapabilityApproveLeave)).To(gomega.Succeed())
		})

		ginkgo.It("should fail with Unauthenticated for an anonymous actor", func() {
			err := guard.Authorize(ctx, nil, CapabilityView)

			var authErr *AuthorizationError
			gomega.Expect(errors.As(err, &authErr)).To(gomega.BeTrue())
			gomega.Expect(authErr.Kind).To(gomega.Equal(DenialUnauthenticated))
			gomega.Expect(internal.IsType(err, internal.ErrorTypeUnauthenticated)).To(gomega.BeTrue())
		})

		ginkgo.It("should fail with Forbidden naming the capability", func() {
			err := guard.Authorize(ctx, viewer, CapabilityApproveLeave)

			var authErr *AuthorizationError
			gomega.Expect(errors.As(err, &authErr)).To(gomega.BeTrue())
			gomega.Expect(authErr.Kind).To(gomega.Equal(DenialForbidden))
			gomega.Expect(authErr.Capability).To(gomega.Equal(CapabilityApproveLeave))

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(appErr.Message).To(gomega.ContainSubstring("approve leave"))
		})
	})

	ginkgo.Describe("Require", func() {
		var reached bool
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			reached = true
			w.WriteHeader(http.StatusNoContent)
		})

		ginkgo.BeforeEach(func() {
			reached = false
		})

		ginkgo.It("should answer 401 without an actor", func() {
			rec := httptest.NewRecorder()
			guard.Require(CapabilityView)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("should answer 403 for an insufficient role", func() {
			req := httptest.NewRequest(http.MethodDelete, "/", nil)
			req = req.WithContext(ContextWithActor(req.Context(), officer))
			rec := httptest.NewRecorder()

			guard.Require(CapabilityDelete)(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"capability":"delete"`))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("should pass through when allowed", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(ContextWithActor(req.Context(), viewer))
			rec := httptest.NewRecorder()

			guard.Require(CapabilityView)(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(reached).To(gomega.BeTrue())
		})
	})
})

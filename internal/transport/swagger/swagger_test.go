package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/personnel-records/internal/transport/swagger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSwagger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swagger Suite")
}

var _ = Describe("API document", func() {
	It("loads and validates the shipped document", func() {
		doc, err := swagger.Load(context.Background(), "../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Paths.Find("/leave-requests/{id}/decision")).NotTo(BeNil())
		Expect(doc.Paths.Find("/personnel/{id}/kardex")).NotTo(BeNil())
	})

	It("reports a missing file", func() {
		_, err := swagger.Load(context.Background(), "does-not-exist.yml")
		Expect(err).To(HaveOccurred())
	})

	It("serves the UI", func() {
		rec := httptest.NewRecorder()
		swagger.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})

package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pulse.app/engine/internal/domain"
	"pulse.app/engine/internal/http/handler"
	"pulse.app/engine/internal/http/middleware"
)

var _ = Describe("EntryHandler", func() {
	var (
		entryService *mockEntryService
		router       *gin.Engine
	)

	BeforeEach(func() {
		entryService = &mockEntryService{}
		h := handler.NewEntryHandler(entryService)

		router = gin.New()
		router.POST("/entries", middleware.RequireUser(), h.Log)
	})

	post := func(body string, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	asUser := map[string]string{"X-User-ID": "42"}

	It("logs an entry for the scoped user", func() {
		rec := post(`{"block":"body","date":"2026-08-30","energy":4,"sleep_hours":7.5}`, asUser)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		Expect(entryService.lastEntry.UserID).To(Equal(int64(42)))
		Expect(entryService.lastEntry.Block).To(Equal(domain.BlockBody))
		Expect(entryService.lastEntry.Date).To(Equal(domain.Date("2026-08-30")))
		Expect(*entryService.lastEntry.Energy).To(Equal(4))
		Expect(*entryService.lastEntry.SleepHours).To(Equal(7.5))

		var body map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["entry_id"]).To(Equal("12345"))
		Expect(body["block"]).To(Equal("body"))
		Expect(body["date"]).To(Equal("2026-08-30"))
	})

	DescribeTable("rejects an invalid payload",
		func(body string) {
			rec := post(body, asUser)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		},
		Entry("not JSON", "not json"),
		Entry("missing block", `{"date":"2026-08-30"}`),
		Entry("unknown block", `{"block":"mind","date":"2026-08-30"}`),
		Entry("missing date", `{"block":"body"}`),
		Entry("malformed date", `{"block":"body","date":"30/08/2026"}`),
	)

	It("fails closed when the service fails", func() {
		entryService.logFn = func(context.Context, *domain.LogEntry) error {
			return errors.New("connection refused")
		}

		rec := post(`{"block":"body","date":"2026-08-30"}`, asUser)
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})

	It("requires the user header", func() {
		rec := post(`{"block":"body","date":"2026-08-30"}`, nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})

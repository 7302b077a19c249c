package validator

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stemsi/ignite-backend/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	Setup()
	now = func() time.Time { return time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC) }
	m.Run()
}

// aboveInt4 is one past the largest value an INT column holds.
var aboveInt4 int64 = math.MaxInt32 + 1

func validClass() model.CreateClassRequest {
	return model.CreateClassRequest{
		Name:      "Yoga",
		StartDate: "2025-12-01",
		EndDate:   "2025-12-03",
		StartTime: "7:30",
		Duration:  60,
		Capacity:  10,
	}
}

func validate(obj interface{}) map[string]string {
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

func TestValidClassPasses(t *testing.T) {
	if fields := validate(validClass()); fields != nil {
		t.Fatalf("unexpected errors: %v", fields)
	}
}

func TestClassRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *model.CreateClassRequest)
		field  string
	}{
		{"missing name", func(r *model.CreateClassRequest) { r.Name = "" }, "name"},
		{"malformed start", func(r *model.CreateClassRequest) { r.StartDate = "2025-13-01" }, "startDate"},
		{"past start", func(r *model.CreateClassRequest) { r.StartDate = "2025-10-01" }, "startDate"},
		{"today is not future", func(r *model.CreateClassRequest) { r.StartDate = "2025-11-01" }, "startDate"},
		{"end equals start", func(r *model.CreateClassRequest) { r.EndDate = r.StartDate }, "endDate"},
		{"end before start", func(r *model.CreateClassRequest) { r.EndDate = "2025-11-30" }, "endDate"},
		{"bad hour", func(r *model.CreateClassRequest) { r.StartTime = "24:00" }, "startTime"},
		{"bad minute", func(r *model.CreateClassRequest) { r.StartTime = "09:60" }, "startTime"},
		{"zero duration", func(r *model.CreateClassRequest) { r.Duration = 0 }, "duration"},
		{"negative capacity", func(r *model.CreateClassRequest) { r.Capacity = -1 }, "capacity"},
		{"duration above int4", func(r *model.CreateClassRequest) { r.Duration = int(aboveInt4) }, "duration"},
		{"capacity above int4", func(r *model.CreateClassRequest) { r.Capacity = int(aboveInt4) }, "capacity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validClass()
			tc.mutate(&req)
			fields := validate(req)
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("want error on %q, got %v", tc.field, fields)
			}
		})
	}
}

func TestInt4BoundaryAccepted(t *testing.T) {
	req := validClass()
	req.Duration = math.MaxInt32
	req.Capacity = math.MaxInt32
	if fields := validate(req); fields != nil {
		t.Fatalf("unexpected errors: %v", fields)
	}
}

func TestDateAfterMessageUsesJSONName(t *testing.T) {
	req := validClass()
	req.EndDate = "2025-11-30"
	fields := validate(req)
	if msg := fields["endDate"]; !strings.Contains(msg, "startDate") {
		t.Fatalf("message should name startDate, got %q", msg)
	}
}

func TestBookingRequestRules(t *testing.T) {
	ok := model.CreateBookingRequest{
		MemberName:        "Alice",
		ClassID:           "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		ParticipationDate: "2025-12-02",
	}
	if fields := validate(ok); fields != nil {
		t.Fatalf("unexpected errors: %v", fields)
	}

	bad := ok
	bad.ClassID = "not-a-uuid"
	bad.ParticipationDate = "02/12/2025"
	fields := validate(bad)
	if _, ok := fields["classId"]; !ok {
		t.Fatalf("want classId error, got %v", fields)
	}
	if _, ok := fields["participationDate"]; !ok {
		t.Fatalf("want participationDate error, got %v", fields)
	}
}

func TestBindQueryUsesFormNames(t *testing.T) {
	r := gin.New()
	var fields map[string]string
	r.GET("/", func(c *gin.Context) {
		var q model.SearchBookingsQuery
		fields = BindQuery(c, &q)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?startDate=yesterday", nil))
	if _, ok := fields["startDate"]; !ok {
		t.Fatalf("want startDate error, got %v", fields)
	}
}

func TestBindReportsMalformedJSON(t *testing.T) {
	r := gin.New()
	var fields map[string]string
	r.POST("/", func(c *gin.Context) {
		var req model.CreateBookingRequest
		fields = Bind(c, &req)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
	if _, ok := fields["detail"]; !ok {
		t.Fatalf("want detail entry, got %v", fields)
	}
}

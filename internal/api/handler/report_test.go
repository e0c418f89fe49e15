package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/report"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
)

func TestReportHandler_Generate(t *testing.T) {
	req := service.ReportRequest{ReportType: "daily", Semester: 3, StartDate: "2024-03-04", EndDate: "2024-03-08"}
	rep := &report.Report{Mode: report.ModeDaily, Sheets: []report.Sheet{{Name: report.SheetDaily, Header: []string{"Roll No", "Name"}}}}
	body := `{"report_type":"daily","semester":3,"start_date":"2024-03-04","end_date":"2024-03-08"}`

	newApp := func(svc *MockReportService) func(string) (int, string, string) {
		h := NewReportHandler(svc)
		app := newTestApp()
		app.Post("/v1/reports", h.Generate)
		return func(target string) (int, string, string) {
			resp, err := app.Test(jsonRequest("POST", target, body))
			require.NoError(t, err)
			return resp.StatusCode, resp.Header.Get("Content-Type"), resp.Header.Get("Content-Disposition")
		}
	}

	t.Run("workbook", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("Generate", mock.Anything, req).Return(rep, nil)
		svc.On("Write", mock.Anything, rep).Return(nil)

		status, ctype, disp := newApp(svc)("/v1/reports")
		assert.Equal(t, 200, status)
		assert.Equal(t, xlsxMIME, ctype)
		assert.Contains(t, disp, "daily_report_sem3_2024-03-04_to_2024-03-08.xlsx")
		svc.AssertExpectations(t)
	})

	t.Run("json", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("Generate", mock.Anything, req).Return(rep, nil)

		status, ctype, _ := newApp(svc)("/v1/reports?format=json")
		assert.Equal(t, 200, status)
		assert.Contains(t, ctype, "application/json")
		svc.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	})

	t.Run("empty roster", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("Generate", mock.Anything, req).Return(nil, domain.ErrRosterEmpty)

		status, _, _ := newApp(svc)("/v1/reports")
		assert.Equal(t, 404, status)
	})
}

package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

const xlsx = mime.MIME("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// Students

type RegisterStudentRequest struct {
	RollNo   string   `json:"roll_no" example:"21CS001"`
	Name     string   `json:"name" example:"Asha Rao"`
	Branch   string   `json:"branch" example:"CSE"`
	Semester int      `json:"semester" example:"3"`
	Subjects []string `json:"subjects,omitempty" example:"CS301,CS302"`
	Image    string   `json:"image" example:"data:image/jpeg;base64,/9j/4AAQ..."`
}

type StudentResponse struct {
	ID       string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	RollNo   string   `json:"roll_no" example:"21CS001"`
	Name     string   `json:"name" example:"Asha Rao"`
	Branch   string   `json:"branch" example:"CSE"`
	Semester int      `json:"semester" example:"3"`
	Subjects []string `json:"subjects,omitempty" example:"CS301,CS302"`
}

type RegisterStudentResponse struct {
	Message     string          `json:"message" example:"Student registered successfully"`
	IdentityKey string          `json:"identity_key" example:"21CS001_3_AshaRao_CSE"`
	Student     StudentResponse `json:"student"`
}

type PromoteRequest struct {
	Semester     int      `json:"semester" example:"3"`
	Branch       string   `json:"branch" example:"CSE"`
	ExcludeRolls []string `json:"exclude_rolls,omitempty" example:"21CS009"`
}

type PromotionResponse struct {
	FromSemester int               `json:"from_semester" example:"3"`
	ToSemester   int               `json:"to_semester" example:"4"`
	Branch       string            `json:"branch" example:"CSE"`
	Promoted     []StudentResponse `json:"promoted"`
}

// Subjects

type SubjectRequest struct {
	Code     string `json:"code" example:"CS301"`
	Name     string `json:"name" example:"Operating Systems"`
	Branch   string `json:"branch" example:"CSE"`
	Semester int    `json:"semester" example:"3"`
}

type SubjectResponse struct {
	ID       string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Code     string `json:"code" example:"CS301"`
	Name     string `json:"name" example:"Operating Systems"`
	Branch   string `json:"branch" example:"CSE"`
	Semester int    `json:"semester" example:"3"`
}

type SubjectCodesResponse struct {
	Codes []string `json:"codes" example:"CS301,CS302"`
}

// Sessions and attendance

type StartSessionRequest struct {
	SubjectCode string `json:"subject_code" example:"CS301"`
	Semester    int    `json:"semester" example:"3"`
	Branch      string `json:"branch" example:"CSE"`
	Timing      string `json:"timing" example:"09:00-10:00"`
}

type AttendanceRecordResponse struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	IdentityKey string `json:"identity_key" example:"21CS001_3_AshaRao_CSE"`
	RollNo      string `json:"roll_no" example:"21CS001"`
	Name        string `json:"name" example:"Asha Rao"`
	SubjectCode string `json:"subject_code" example:"CS301"`
	SubjectName string `json:"subject_name" example:"Operating Systems"`
	Date        string `json:"date" example:"2024-03-05T00:00:00Z"`
	Status      string `json:"status" example:"present"`
	MarkedAt    string `json:"marked_at,omitempty" example:"2024-03-05T09:31:12Z"`
	Timing      string `json:"timing,omitempty" example:"09:00-10:00"`
	Semester    int    `json:"semester" example:"3"`
	Branch      string `json:"branch" example:"CSE"`
}

type SessionSummaryResponse struct {
	Records         []AttendanceRecordResponse `json:"records"`
	PresentRolls    []string                   `json:"present_rolls" example:"21CS001"`
	Present         int                        `json:"present" example:"38"`
	Absent          int                        `json:"absent" example:"4"`
	StopReason      string                     `json:"stop_reason" example:"complete"`
	FramesProcessed int                        `json:"frames_processed" example:"412"`
	UnknownFaces    int                        `json:"unknown_faces" example:"3"`
	ExportPath      string                     `json:"export_path,omitempty" example:"data/attendance_records/CS301_3_CSE_2024-03-05.xlsx"`
}

type SessionStatusResponse struct {
	SessionID   string `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SubjectCode string `json:"subject_code" example:"CS301"`
	Semester    int    `json:"semester" example:"3"`
	Branch      string `json:"branch" example:"CSE"`
	Date        string `json:"date" example:"2024-03-05"`
	State       string `json:"state" example:"running"`
	StopReason  string `json:"stop_reason,omitempty" example:"complete"`
	Present     int    `json:"present" example:"12"`
	Absent      int    `json:"absent" example:"0"`
	StartedAt   string `json:"started_at" example:"2024-03-05T09:30:00Z"`
	FinishedAt  string `json:"finished_at,omitempty" example:"2024-03-05T09:35:00Z"`
	Error       string `json:"error,omitempty"`
}

type ExportRequest struct {
	Filename string                     `json:"filename,omitempty" example:"CS301_3_CSE_2024-03-05.xlsx"`
	Records  []AttendanceRecordResponse `json:"records"`
}

type CaptureProbeResponse struct {
	Available  bool   `json:"available" example:"true"`
	FrameBytes int    `json:"frame_bytes,omitempty" example:"48213"`
	Error      string `json:"error,omitempty"`
}

type SaveAttendanceRequest struct {
	Roll        string `json:"roll" example:"21CS001"`
	Name        string `json:"name" example:"Asha Rao"`
	Branch      string `json:"branch" example:"CSE"`
	Semester    int    `json:"semester" example:"3"`
	SubjectCode string `json:"subject_code" example:"CS301"`
	Date        string `json:"date" example:"2024-03-05"`
	Status      string `json:"status" example:"present"`
	Timing      string `json:"timing,omitempty" example:"09:00-10:00"`
}

type SaveAttendanceResponse struct {
	Message string                   `json:"message" example:"Attendance saved"`
	Record  AttendanceRecordResponse `json:"record"`
}

type BulkAttendanceRow struct {
	RollNo      string `json:"roll_no" example:"21CS001"`
	Name        string `json:"name" example:"Asha Rao"`
	Branch      string `json:"branch" example:"CSE"`
	Semester    int    `json:"semester" example:"3"`
	SubjectCode string `json:"subject_code" example:"CS301"`
	Date        string `json:"date" example:"2024-03-05"`
	Status      string `json:"status" example:"absent"`
}

type BulkAttendanceResponse struct {
	Message string `json:"message" example:"Attendance records updated successfully"`
	Saved   int    `json:"saved" example:"42"`
}

type DeleteByRollResponse struct {
	Deleted int64 `json:"deleted" example:"12"`
}

// Reports

type ReportRequest struct {
	ReportType string `json:"report_type" example:"weekly"`
	Subject    string `json:"subject,omitempty" example:"CS301"`
	Semester   int    `json:"semester" example:"3"`
	Branch     string `json:"branch,omitempty" example:"CSE"`
	StartDate  string `json:"start_date" example:"2024-03-04"`
	EndDate    string `json:"end_date" example:"2024-03-08"`
}

type ReportSheet struct {
	Name   string   `json:"name" example:"Weekly Report"`
	Header []string `json:"header" example:"Roll No,Name,CS301 Present,CS301 Total,CS301 %"`
}

type ReportResponse struct {
	Mode   string        `json:"mode" example:"weekly"`
	Sheets []ReportSheet `json:"sheets"`
}

var (
	errBadRequest = response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request body"}, "400", "Bad Request")
	errValidation = response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity")
	errSemester   = response.New(ErrorResponse{Code: "INVALID_SEMESTER", Message: "Semester must be between 1 and 8"}, "422", "Unprocessable Entity")
	errDate       = response.New(ErrorResponse{Code: "INVALID_DATE", Message: "Dates must use YYYY-MM-DD"}, "422", "Unprocessable Entity")
	errInternal   = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
)

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Chamada Attendance API",
		Version:     "v1.0.0",
		Description: "Face recognition classroom attendance: student enrolment, capture sessions, attendance ledger and xlsx reports",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/students - Register Student
		endpoint.New(
			endpoint.POST,
			"/students",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Register a student"),
			endpoint.WithDescription("Stores the student and the face encoding of the first face found in the reference photo. The image is base64, optionally a data URL."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(RegisterStudentRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterStudentResponse{}, "201", "Student registered successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "STUDENT_ALREADY_EXISTS", Message: "Student already registered"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Image could not be decoded"}, "422", "Unprocessable Entity"),
				errSemester,
				response.New(ErrorResponse{Code: "ENCODER_UNAVAILABLE", Message: "Face encoder unavailable"}, "503", "Service Unavailable"),
				errInternal,
			}),
		),

		// GET /v1/students - List Students
		endpoint.New(
			endpoint.GET,
			"/students",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("List students"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("semester", parameter.Query, parameter.WithDescription("Semester 1-8, all when omitted")),
				parameter.StrParam("branch", parameter.Query, parameter.WithDescription("Branch code")),
				parameter.StrParam("subject", parameter.Query, parameter.WithDescription("Only students enrolled in this subject")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]StudentResponse{}, "200", "Students"),
			}),
			endpoint.WithErrors([]response.Response{errSemester, errInternal}),
		),

		// GET /v1/students/lookup - Lookup Student
		endpoint.New(
			endpoint.GET,
			"/students/lookup",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Find a student by roll number within a class"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("roll", parameter.Query, parameter.WithDescription("Roll number")),
				parameter.IntParam("semester", parameter.Query, parameter.WithDescription("Semester 1-8")),
				parameter.StrParam("branch", parameter.Query, parameter.WithDescription("Branch code")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StudentResponse{}, "200", "Student"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "STUDENT_NOT_FOUND", Message: "Student not found"}, "404", "Not Found"),
				errValidation,
				errInternal,
			}),
		),

		// GET /v1/students/semester/{semester} - Students by Semester
		endpoint.New(
			endpoint.GET,
			"/students/semester/{semester}",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("List students of a semester"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(parameter.IntParam("semester", parameter.Path, parameter.WithDescription("Semester 1-8"))),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]StudentResponse{}, "200", "Students"),
			}),
			endpoint.WithErrors([]response.Response{errSemester, errInternal}),
		),

		// GET /v1/students/semester/{semester}/subject/{code} - Students by Subject
		endpoint.New(
			endpoint.GET,
			"/students/semester/{semester}/subject/{code}",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("List students of a semester enrolled in a subject"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("semester", parameter.Path, parameter.WithDescription("Semester 1-8")),
				parameter.StrParam("code", parameter.Path, parameter.WithDescription("Subject code")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]StudentResponse{}, "200", "Students"),
			}),
			endpoint.WithErrors([]response.Response{errSemester, errInternal}),
		),

		// POST /v1/students/promote - Promote Semester
		endpoint.New(
			endpoint.POST,
			"/students/promote",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Promote a class to the next semester"),
			endpoint.WithDescription("Moves every student of the semester and branch up by one, except the listed roll numbers"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(PromoteRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PromotionResponse{}, "200", "Students promoted"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "SEMESTER_FINAL", Message: "Students in the final semester cannot be promoted"}, "409", "Conflict"),
				errSemester,
				errInternal,
			}),
		),

		// POST /v1/subjects - Create Subject
		endpoint.New(
			endpoint.POST,
			"/subjects",
			endpoint.WithTags("Subjects"),
			endpoint.WithSummary("Create a subject"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(SubjectRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SubjectResponse{}, "201", "Subject created"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "SUBJECT_ALREADY_EXISTS", Message: "Subject already exists"}, "409", "Conflict"),
				errValidation,
				errInternal,
			}),
		),

		// GET /v1/subjects - List Subjects
		endpoint.New(
			endpoint.GET,
			"/subjects",
			endpoint.WithTags("Subjects"),
			endpoint.WithSummary("List every subject"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]SubjectResponse{}, "200", "Subjects"),
			}),
			endpoint.WithErrors([]response.Response{errInternal}),
		),

		// GET /v1/subjects/codes - Subject Codes
		endpoint.New(
			endpoint.GET,
			"/subjects/codes",
			endpoint.WithTags("Subjects"),
			endpoint.WithSummary("List distinct subject codes of a semester"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(parameter.IntParam("semester", parameter.Query, parameter.WithDescription("Semester 1-8"))),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SubjectCodesResponse{}, "200", "Subject codes"),
			}),
			endpoint.WithErrors([]response.Response{errSemester, errInternal}),
		),

		// GET /v1/subjects/semester/{semester} - Subjects by Semester
		endpoint.New(
			endpoint.GET,
			"/subjects/semester/{semester}",
			endpoint.WithTags("Subjects"),
			endpoint.WithSummary("List subjects of a semester"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(parameter.IntParam("semester", parameter.Path, parameter.WithDescription("Semester 1-8"))),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]SubjectResponse{}, "200", "Subjects"),
			}),
			endpoint.WithErrors([]response.Response{errSemester, errInternal}),
		),

		// GET /v1/subjects/semester/{semester}/branch/{branch} - Subjects by Class
		endpoint.New(
			endpoint.GET,
			"/subjects/semester/{semester}/branch/{branch}",
			endpoint.WithTags("Subjects"),
			endpoint.WithSummary("List subjects of a semester and branch"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("semester", parameter.Path, parameter.WithDescription("Semester 1-8")),
				parameter.StrParam("branch", parameter.Path, parameter.WithDescription("Branch code")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]SubjectResponse{}, "200", "Subjects"),
			}),
			endpoint.WithErrors([]response.Response{errSemester, errInternal}),
		),

		// POST /v1/sessions - Run Session
		endpoint.New(
			endpoint.POST,
			"/sessions",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Run an attendance session"),
			endpoint.WithDescription("Opens the capture device, marks recognized students present until the class is complete, the frames run out or the session times out, then records everyone else absent. Answers when the session ends; follow progress on /sessions/ws."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(StartSessionRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionSummaryResponse{}, "200", "Session finished"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "SUBJECT_NOT_FOUND", Message: "Subject not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "ROSTER_EMPTY", Message: "No students registered for this class"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "ATTENDANCE_ALREADY_TAKEN", Message: "Attendance already taken for this class today"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "NO_IDENTITIES_FOR_SCOPE", Message: "No registered faces for this class"}, "422", "Unprocessable Entity"),
				errSemester,
				response.New(ErrorResponse{Code: "CAPTURE_UNAVAILABLE", Message: "Capture device unavailable"}, "503", "Service Unavailable"),
				errInternal,
			}),
		),

		// GET /v1/sessions/status - Session Status
		endpoint.New(
			endpoint.GET,
			"/sessions/status",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Status of the latest session of a class"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("subject", parameter.Query, parameter.WithDescription("Subject code")),
				parameter.IntParam("semester", parameter.Query, parameter.WithDescription("Semester 1-8")),
				parameter.StrParam("branch", parameter.Query, parameter.WithDescription("Branch code")),
				parameter.StrParam("date", parameter.Query, parameter.WithDescription("YYYY-MM-DD, today when omitted")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionStatusResponse{}, "200", "Session status"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "NOT_FOUND", Message: "No session recorded for this class"}, "404", "Not Found"),
				errDate,
				errInternal,
			}),
		),

		// GET /v1/sessions/ws - Live Session Events
		endpoint.New(
			endpoint.GET,
			"/sessions/ws",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("WebSocket stream of session events"),
			endpoint.WithDescription("Upgrades to a WebSocket joined to the class room. Emits session.started, attendance.marked and session.completed."),
			endpoint.WithParams(
				parameter.StrParam("subject", parameter.Query, parameter.WithDescription("Subject code")),
				parameter.IntParam("semester", parameter.Query, parameter.WithDescription("Semester 1-8")),
				parameter.StrParam("branch", parameter.Query, parameter.WithDescription("Branch code")),
			),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "subject, semester and branch are required"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "HTTP_ERROR", Message: "Upgrade Required"}, "426", "Upgrade Required"),
			}),
		),

		// POST /v1/sessions/export - Export Session
		endpoint.New(
			endpoint.POST,
			"/sessions/export",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Export session records as xlsx"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{xlsx}),
			endpoint.WithBody(ExportRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "200", "Workbook"),
			}),
			endpoint.WithErrors([]response.Response{errBadRequest, errValidation, errInternal}),
		),

		// GET /v1/sessions/capture-test - Capture Probe
		endpoint.New(
			endpoint.GET,
			"/sessions/capture-test",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Read one frame from the capture device"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CaptureProbeResponse{}, "200", "Device delivered a frame"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(CaptureProbeResponse{Error: "connection refused"}, "503", "Device unavailable"),
			}),
		),

		// GET /v1/attendance - Attendance by Date
		endpoint.New(
			endpoint.GET,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Attendance records of a day"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("date", parameter.Query, parameter.WithDescription("YYYY-MM-DD")),
				parameter.IntParam("semester", parameter.Query, parameter.WithDescription("Semester 1-8, all when omitted")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]AttendanceRecordResponse{}, "200", "Records"),
			}),
			endpoint.WithErrors([]response.Response{errDate, errSemester, errInternal}),
		),

		// GET /v1/attendance/range - Attendance by Range
		endpoint.New(
			endpoint.GET,
			"/attendance/range",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Attendance records of an inclusive date range"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("start", parameter.Query, parameter.WithDescription("YYYY-MM-DD")),
				parameter.StrParam("end", parameter.Query, parameter.WithDescription("YYYY-MM-DD")),
				parameter.IntParam("semester", parameter.Query, parameter.WithDescription("Semester 1-8, all when omitted")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]AttendanceRecordResponse{}, "200", "Records"),
			}),
			endpoint.WithErrors([]response.Response{errDate, errValidation, errSemester, errInternal}),
		),

		// GET /v1/attendance/all - All Attendance
		endpoint.New(
			endpoint.GET,
			"/attendance/all",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Every attendance record"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New([]AttendanceRecordResponse{}, "200", "Records"),
			}),
			endpoint.WithErrors([]response.Response{errInternal}),
		),

		// POST /v1/attendance - Save Attendance
		endpoint.New(
			endpoint.POST,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Create or correct one attendance record"),
			endpoint.WithDescription("Upserts the record of a student for a subject and date"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(SaveAttendanceRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SaveAttendanceResponse{}, "200", "Record saved"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "STUDENT_NOT_FOUND", Message: "Student not found"}, "404", "Not Found"),
				errValidation,
				errDate,
				errInternal,
			}),
		),

		// POST /v1/attendance/bulk - Bulk Save Attendance
		endpoint.New(
			endpoint.POST,
			"/attendance/bulk",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Upsert a batch of attendance records"),
			endpoint.WithDescription("Validates every row before writing any of them"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody([]BulkAttendanceRow{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(BulkAttendanceResponse{}, "200", "Records saved"),
			}),
			endpoint.WithErrors([]response.Response{errBadRequest, errValidation, errDate, errInternal}),
		),

		// DELETE /v1/attendance/{id} - Delete Record
		endpoint.New(
			endpoint.DELETE,
			"/attendance/{id}",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Delete one attendance record"),
			endpoint.WithParams(parameter.StrParam("id", parameter.Path, parameter.WithDescription("Record id"))),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Record deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid id"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "RECORD_NOT_FOUND", Message: "Attendance record not found"}, "404", "Not Found"),
				errInternal,
			}),
		),

		// DELETE /v1/attendance/roll/{roll} - Delete Student Records
		endpoint.New(
			endpoint.DELETE,
			"/attendance/roll/{roll}",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Delete every attendance record of a roll number"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(parameter.StrParam("roll", parameter.Path, parameter.WithDescription("Roll number"))),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DeleteByRollResponse{}, "200", "Records deleted"),
			}),
			endpoint.WithErrors([]response.Response{errValidation, errInternal}),
		),

		// POST /v1/reports - Generate Report
		endpoint.New(
			endpoint.POST,
			"/reports",
			endpoint.WithTags("Reports"),
			endpoint.WithSummary("Build an attendance report"),
			endpoint.WithDescription("Daily grid, single subject percentages or a weekly/monthly summary with a subject summary sheet. Returns xlsx unless format=json."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{xlsx, mime.JSON}),
			endpoint.WithParams(parameter.StrParam("format", parameter.Query, parameter.WithDescription("json to receive the sheets as JSON"))),
			endpoint.WithBody(ReportRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReportResponse{}, "200", "Report"),
			}),
			endpoint.WithErrors([]response.Response{
				errBadRequest,
				response.New(ErrorResponse{Code: "ROSTER_EMPTY", Message: "No students found for the given criteria"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "SUBJECT_NOT_FOUND", Message: "No subjects found for this semester"}, "404", "Not Found"),
				errValidation,
				errDate,
				errSemester,
				errInternal,
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}

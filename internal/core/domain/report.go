package domain

// SchoolCounts holds the number of rows of each school entity.
type SchoolCounts struct {
	Institutions int64 `json:"institutions"`
	Courses      int64 `json:"courses"`
	Students     int64 `json:"students"`
	Subjects     int64 `json:"subjects"`
	Grades       int64 `json:"grades"`
}

// GradeRow is a grade joined with the names a report prints.
type GradeRow struct {
	StudentID   string
	StudentName string
	CourseID    string
	SubjectID   string
	SubjectName string
	Period      string
	Value       float64
}

type SubjectAverage struct {
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Average     float64 `json:"average"`
	Count       int     `json:"count"`
}

type DashboardSummary struct {
	Counts           SchoolCounts     `json:"counts"`
	OverallAverage   float64          `json:"overall_average"`
	AverageBySubject []SubjectAverage `json:"average_by_subject"`
}

type StudentReportRow struct {
	StudentID      string             `json:"student_id"`
	StudentName    string             `json:"student_name"`
	SubjectAverage map[string]float64 `json:"subject_average"`
	Average        float64            `json:"average"`
	Passed         bool               `json:"passed"`
}

type GradeReport struct {
	CourseID      string             `json:"course_id,omitempty"`
	Period        string             `json:"period,omitempty"`
	Rows          []StudentReportRow `json:"rows"`
	CourseAverage float64            `json:"course_average"`
	PassRate      float64            `json:"pass_rate"`
}

package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	MailTypeCreateUser = "create_user"
	MailTypeRunReport  = "run_report"
)

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RunReportWindow struct {
	Index       int     `json:"index"`
	Load        int64   `json:"load"`
	CustomerIDs []int64 `json:"customerIDs"`
}

type RunReportMailData struct {
	FullName    string            `json:"fullName"`
	RunID       int64             `json:"runID"`
	WindowCount int32             `json:"windowCount"`
	Fitness     int64             `json:"fitness"`
	LowerBound  int64             `json:"lowerBound"`
	Windows     []RunReportWindow `json:"windows"`
}

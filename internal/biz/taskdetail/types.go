package taskdetail

type DetailStatus string

const (
	DetailStatusDoing  DetailStatus = "DOING"
	DetailStatusError  DetailStatus = "ERROR"
	DetailStatusFinish DetailStatus = "FINISH"
)

package domain

type TaskStatus string

const (
	TaskNotStarted    TaskStatus = "NOT_STARTED"
	TaskStarted       TaskStatus = "STARTED"
	TaskReadyForClaim TaskStatus = "READY_FOR_CLAIM"
	TaskFinished      TaskStatus = "FINISHED"
)

type Task struct {
	ID     string
	Title  string
	Kind   string
	Status TaskStatus
	Reward string
}

func (t Task) Claimable() bool {
	return t.Status == TaskReadyForClaim
}

func (t Task) Done() bool {
	return t.Status == TaskFinished
}

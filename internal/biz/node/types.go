package node

type NodeStatus string

const (
	NodeStatusEnable  NodeStatus = "ENABLE"
	NodeStatusDisable NodeStatus = "DISABLE"
)

// NotifyCmd 节点间通知命令, 写入目标节点的记录, 由目标节点的心跳循环消费
type NotifyCmd string

const (
	NotifyNone  NotifyCmd = "NO_NOTIFY"
	NotifyStart NotifyCmd = "START"
	NotifyEdit  NotifyCmd = "EDIT"
	NotifyStop  NotifyCmd = "STOP"
)

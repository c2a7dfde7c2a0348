// Package ids hands out snowflake ids for tasks, task details and nodes.
package ids

import (
	"hash/fnv"
	"sync"

	"github.com/yitter/idgenerator-go/idgen"
)

const (
	// 2024-01-01 00:00:00 UTC
	baseTime = 1704067200000

	workerIDBits = 10
	// MaxWorkerID 最多支持1024个节点
	MaxWorkerID = 1<<workerIDBits - 1
)

// Generator 一个 WorkerId 对应的雪花ID生成器. 同一时刻在线的节点必须使用不同的 WorkerId.
type Generator struct {
	workerID uint16
	gen      *idgen.DefaultIdGenerator
}

func NewGenerator(workerID uint16) *Generator {
	options := idgen.NewIdGeneratorOptions(workerID)
	options.BaseTime = baseTime
	options.WorkerIdBitLength = workerIDBits
	return &Generator{workerID: workerID, gen: idgen.NewDefaultIdGenerator(options)}
}

func (g *Generator) WorkerID() uint16 {
	return g.workerID
}

func (g *Generator) Next() uint64 {
	return uint64(g.gen.NewLong())
}

// WorkerIDFor 由节点ID推导 WorkerId (FNV-1a 取模).
func WorkerIDFor(nodeID string) uint16 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(nodeID))
	return uint16(h.Sum32() % (MaxWorkerID + 1))
}

var (
	once sync.Once
	std  *Generator
)

// Init 设置进程级生成器的 WorkerId, 只有第一次调用生效
func Init(workerID uint16) {
	once.Do(func() {
		std = NewGenerator(workerID)
	})
}

// Next returns a new id from the process-wide generator, initializing it
// with worker id 1 if Init was never called.
func Next() uint64 {
	Init(1)
	return std.Next()
}

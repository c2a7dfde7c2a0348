package memrepo

import (
	"context"
	"sort"
	"time"

	"github.com/jobs/dcron/internal/biz/node"
)

type nodeRepo struct {
	s *Store
}

func cloneNode(n *node.Node) *node.Node {
	c := *n
	return &c
}

func (r *nodeRepo) Register(_ context.Context, n *node.Node) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	stored, ok := r.s.nodes[n.NodeID]
	if !ok {
		stored = &node.Node{ID: r.s.allocID(), NodeID: n.NodeID, CreatedAt: now}
		r.s.nodes[n.NodeID] = stored
	} else {
		stored.Version++
	}
	stored.Status = node.NodeStatusEnable
	stored.WorkerID = n.WorkerID
	stored.Weight = n.Weight
	stored.HeartbeatAt = n.HeartbeatAt
	stored.NotifyCmd = node.NotifyNone
	stored.NotifyValue = ""
	stored.UpdatedAt = now

	*n = *cloneNode(stored)
	return nil
}

func (r *nodeRepo) GetByNodeID(_ context.Context, nodeID string) (*node.Node, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n, ok := r.s.nodes[nodeID]; ok {
		return cloneNode(n), nil
	}
	return nil, nil
}

func (r *nodeRepo) List(_ context.Context) ([]*node.Node, error) {
	return r.collect(func(*node.Node) bool { return true }), nil
}

func (r *nodeRepo) ListLive(_ context.Context, since time.Time) ([]*node.Node, error) {
	return r.collect(func(n *node.Node) bool { return n.IsLive(since) }), nil
}

func (r *nodeRepo) Heartbeat(_ context.Context, nodeID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n, ok := r.s.nodes[nodeID]; ok {
		n.HeartbeatAt = at
		n.UpdatedAt = r.s.now()
	}
	return nil
}

func (r *nodeRepo) UpdateStatus(_ context.Context, nodeID string, status node.NodeStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n, ok := r.s.nodes[nodeID]; ok {
		n.Status = status
		n.UpdatedAt = r.s.now()
	}
	return nil
}

func (r *nodeRepo) SetNotify(_ context.Context, nodeID string, cmd node.NotifyCmd, value string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.nodes[nodeID]
	if !ok || n.HasNotify() {
		return false, nil
	}
	n.NotifyCmd = cmd
	n.NotifyValue = value
	n.Version++
	n.UpdatedAt = r.s.now()
	return true, nil
}

func (r *nodeRepo) ResetNotify(_ context.Context, nodeID string, expectedVersion int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.nodes[nodeID]
	if !ok || n.Version != expectedVersion {
		return false, nil
	}
	n.NotifyCmd = node.NotifyNone
	n.NotifyValue = ""
	n.Version++
	n.UpdatedAt = r.s.now()
	return true, nil
}

func (r *nodeRepo) collect(match func(*node.Node) bool) []*node.Node {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*node.Node
	for _, n := range r.s.nodes {
		if match(n) {
			out = append(out, cloneNode(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

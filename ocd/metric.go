package ocd

import (
	"sync/atomic"
)

// ConnectionMetrics contains atomic metrics for one client connection.
// Metrics can be used as the value of a prometheus CounterFunc.
type ConnectionMetrics struct {
	// CmdSendCount indicates the number of commands transmitted.
	CmdSendCount atomic.Uint64
	// CmdRecvCount indicates the number of complete responses received.
	CmdRecvCount atomic.Uint64
	// CmdFailedCount indicates the number of commands that completed with
	// a non-zero return code.
	CmdFailedCount atomic.Uint64
	// CmdTimeoutCount indicates the number of command timeouts.
	CmdTimeoutCount atomic.Uint64
	// ConnectCount indicates the number of successful connection
	// establishments.
	ConnectCount atomic.Uint64
}

func (m *ConnectionMetrics) incCmdSendCount() {
	m.CmdSendCount.Add(1)
}

func (m *ConnectionMetrics) incCmdRecvCount() {
	m.CmdRecvCount.Add(1)
}

func (m *ConnectionMetrics) incCmdFailedCount() {
	m.CmdFailedCount.Add(1)
}

func (m *ConnectionMetrics) incCmdTimeoutCount() {
	m.CmdTimeoutCount.Add(1)
}

func (m *ConnectionMetrics) incConnectCount() {
	m.ConnectCount.Add(1)
}

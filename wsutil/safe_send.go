// Package wsutil holds small helpers shared by the room and ws packages.
package wsutil

import "log/slog"

// SafeSend delivers data to a send channel without ever blocking the caller.
// A full buffer drops the message (the client is too slow and will resync on
// the next state update); a send on a closed channel is recovered so a race
// with connection teardown cannot crash the room goroutine.
func SafeSend(ch chan []byte, data []byte) (delivered bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("send on closed channel", "tag", "wsutil", "panic", r)
			delivered = false
		}
	}()
	select {
	case ch <- data:
		return true
	default:
		return false
	}
}

// Package netutil probes local TCP ports.
package netutil

import (
	"net"
	"strconv"
	"time"
)

// DialTimeout bounds a single probe.
const DialTimeout = 300 * time.Millisecond

// PortInUse reports whether something accepts TCP connections on the
// loopback interface at port.
func PortInUse(port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), DialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

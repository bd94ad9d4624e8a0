package netutil

import (
	"net"
	"testing"
)

func TestPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	if !PortInUse(port) {
		t.Fatalf("port %d should be in use", port)
	}
	ln.Close()
	if PortInUse(port) {
		t.Fatalf("port %d should be free after close", port)
	}
}

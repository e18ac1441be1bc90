package benchrig

import (
	"log"
	"net"
	"time"
)

// TCPWriter implements DataWriter over a TCP connection.
type TCPWriter struct {
	conn net.Conn
}

// NewTCPWriter wraps an already-accepted TCP connection as a DataWriter.
func NewTCPWriter(conn net.Conn) DataWriter {
	return &TCPWriter{conn: conn}
}

func (w *TCPWriter) Write(data []byte) (int, error) {
	return w.conn.Write(data)
}

func (w *TCPWriter) Close() error {
	return w.conn.Close()
}

// ListenAndServe accepts connections on addr and starts a Rig on each one,
// so a developer can point a serial-CAN terminal emulator or a test
// client at it while bringing up a bench harness.
func ListenAndServe(addr string, interval time.Duration) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	log.Printf("benchrig: listening on %s", addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("benchrig: accept error: %v", err)
			continue
		}
		go func() {
			log.Printf("benchrig: connection from %s", conn.RemoteAddr())
			NewRig(NewTCPWriter(conn), interval).Start()
		}()
	}
}

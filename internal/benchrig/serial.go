package benchrig

import (
	"github.com/tarm/serial"
)

// SerialWriter implements DataWriter over a serial port.
type SerialWriter struct {
	port *serial.Port
}

// NewSerialWriter opens portName at baud and returns a DataWriter over it.
func NewSerialWriter(portName string, baud int) (DataWriter, error) {
	config := &serial.Config{
		Name: portName,
		Baud: baud,
	}

	port, err := serial.OpenPort(config)
	if err != nil {
		return nil, err
	}

	return &SerialWriter{port: port}, nil
}

func (w *SerialWriter) Write(data []byte) (int, error) {
	return w.port.Write(data)
}

func (w *SerialWriter) Close() error {
	return w.port.Close()
}

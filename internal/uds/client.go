package uds

import (
	"time"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/j2534"
	"jlrdiag/internal/logsink"
)

// pollInterval is the read timeout handed to the binding on each poll
// while waiting for a response, mirroring the reference client's 500ms
// read slice.
const pollInterval = 500 * time.Millisecond

// EmulatorFunc short-circuits a request to an in-process ECU emulator
// instead of going to the wire; it returns ok=false when the emulator
// does not answer for this tx ID so the caller falls through to the
// transport (spec.md §4.C step 1).
type EmulatorFunc func(txID uint32, request []byte) (response []byte, ok bool)

// Client wraps a j2534.Binding channel with UDS request/response framing
// for one ECU address pair.
type Client struct {
	binding   j2534.Binding
	channelID uint32
	txID      uint32
	rxID      uint32
	sink      logsink.Sink
	emulator  EmulatorFunc
}

// NewClient builds a client bound to an already-connected channel.
func NewClient(binding j2534.Binding, channelID, txID, rxID uint32, sink logsink.Sink) *Client {
	if sink == nil {
		sink = logsink.NullSink{}
	}
	return &Client{binding: binding, channelID: channelID, txID: txID, rxID: rxID, sink: sink}
}

// SetEmulator installs an emulator short-circuit. Pass nil to remove it.
func (c *Client) SetEmulator(fn EmulatorFunc) { c.emulator = fn }

func (c *Client) TxID() uint32 { return c.txID }
func (c *Client) RxID() uint32 { return c.rxID }

func (c *Client) log(dir logsink.Direction, data []byte, description string) {
	c.sink.Emit(logsink.NewRecord(dir, hexString(data), description))
}

// SendRecv sends a UDS request and waits for its matching response,
// handling NRC 0x78 (pending) by continuing to poll and NRC 0x21 (busy)
// by propagating to the caller's retry loop. The overall deadline is
// timeout; waitPending raises it to at least 30 seconds.
func (c *Client) SendRecv(request []byte, timeout time.Duration, waitPending bool) ([]byte, error) {
	serviceID := request[0]
	c.log(logsink.Tx, request, describeService(serviceID))

	if c.emulator != nil {
		if resp, ok := c.emulator(c.txID, request); ok {
			return c.classify(serviceID, resp)
		}
	}

	if err := c.write(request); err != nil {
		return nil, transportErr(err)
	}

	deadline := timeout
	if waitPending && deadline < 30*time.Second {
		deadline = 30 * time.Second
	}
	start := time.Now()

	for {
		if time.Since(start) > deadline {
			c.log(logsink.Error, nil, "Timeout waiting for response")
			return nil, timeoutErr()
		}

		msgs, err := c.read()
		if err != nil {
			return nil, transportErr(err)
		}

		for _, payload := range msgs {
			if len(payload) == 0 {
				continue
			}

			if payload[0] == 0x7F && len(payload) >= 3 {
				echoedSID := payload[1]
				nrc := catalog.NRCFromByte(payload[2])

				if echoedSID != serviceID {
					c.log(logsink.Error, payload, "Ignored stale NRC from a previous request")
					continue
				}
				if nrc == catalog.ResponsePending {
					c.log(logsink.Pending, payload, "Response pending...")
					continue
				}
				c.log(logsink.Error, payload, "NRC: "+nrc.String())
				return nil, negativeResponseErr(serviceID, nrc)
			}

			expected := serviceID + 0x40
			if payload[0] == expected {
				c.log(logsink.Rx, payload, describeService(serviceID))
				return payload, nil
			}

			c.log(logsink.Error, payload, "Unexpected response")
		}

		time.Sleep(50 * time.Millisecond)
	}
}

// classify applies the same positive/negative response rules to a
// synthesized emulator reply as a wire response gets.
func (c *Client) classify(serviceID byte, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, timeoutErr()
	}
	if payload[0] == 0x7F && len(payload) >= 3 {
		nrc := catalog.NRCFromByte(payload[2])
		c.log(logsink.Error, payload, "NRC: "+nrc.String())
		return nil, negativeResponseErr(serviceID, nrc)
	}
	c.log(logsink.Rx, payload, describeService(serviceID))
	return payload, nil
}

// SendRecvWithBusyRetry wraps SendRecv with the outer busy-retry loop:
// NRC 0x21 (BusyRepeatRequest) sleeps roughly a second and retries, up
// to six attempts (spec.md §4.C "Busy-retry loop").
func (c *Client) SendRecvWithBusyRetry(request []byte, timeout time.Duration, waitPending bool) ([]byte, error) {
	const maxRetries = 6
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.SendRecv(request, timeout, waitPending)
		if err == nil {
			return resp, nil
		}
		if nrc, ok := IsNegativeResponse(err); ok && nrc == catalog.BusyRepeatRequest {
			time.Sleep(time.Second)
			continue
		}
		return nil, err
	}
	return nil, &Error{Kind: ErrKindNegativeResponse, ServiceID: request[0], NRC: catalog.BusyRepeatRequest,
		Cause: errMaxBusyRetries}
}

// SendNoResponse writes a request without waiting for or expecting a
// reply — used for TesterPresent with the suppressPositiveResponse bit
// set (spec.md §4.C "Send-no-response").
func (c *Client) SendNoResponse(request []byte) error {
	c.log(logsink.Tx, request, describeService(request[0]))
	if err := c.write(request); err != nil {
		return transportErr(err)
	}
	return nil
}

func (c *Client) write(request []byte) error {
	msg := newISOTPEnvelope(c.txID, request)
	_, err := c.binding.WriteMsgs(c.channelID, []j2534.Envelope{msg}, 2*time.Second)
	return err
}

// read polls once and returns every non-empty UDS payload received,
// skipping frames too short to carry a service ID.
func (c *Client) read() ([][]byte, error) {
	buf := make([]j2534.Envelope, 16)
	n, err := c.binding.ReadMsgs(c.channelID, buf, pollInterval)
	if err != nil {
		return nil, err
	}
	payloads := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if buf[i].DataSize <= 4 {
			continue
		}
		payloads = append(payloads, buf[i].Payload())
	}
	return payloads, nil
}

func newISOTPEnvelope(txID uint32, payload []byte) j2534.Envelope {
	e := j2534.Envelope{
		Protocol: j2534.ProtocolISOTP,
		TxFlags:  j2534.TxFlagPad,
		DataSize: uint32(4 + len(payload)),
	}
	e.Data[0] = byte(txID >> 24)
	e.Data[1] = byte(txID >> 16)
	e.Data[2] = byte(txID >> 8)
	e.Data[3] = byte(txID)
	copy(e.Data[4:], payload)
	return e
}

func hexString(b []byte) string {
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, 0, len(b)*3)
	for i, v := range b {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, hexDigits[v>>4], hexDigits[v&0xF])
	}
	return string(out)
}

func describeService(serviceID byte) string {
	switch serviceID {
	case 0x10:
		return "DiagnosticSessionControl"
	case 0x11:
		return "ECUReset"
	case 0x22:
		return "ReadDataByIdentifier"
	case 0x27:
		return "SecurityAccess"
	case 0x2E:
		return "WriteDataByIdentifier"
	case 0x31:
		return "RoutineControl"
	case 0x34:
		return "RequestDownload"
	case 0x36:
		return "TransferData"
	case 0x37:
		return "RequestTransferExit"
	case 0x3E:
		return "TesterPresent"
	default:
		return "Service"
	}
}

package catalog

// IPCDIDResponses are the literal byte payloads the emulator returns for
// IPC (instrument cluster) DID reads, captured from a real vehicle
// (spec.md §4.E).
var IPCDIDResponses = map[uint16][]byte{
	0xF190: []byte("SAJBL4BVXGCY16353"),
	0xF18C: []byte("IP00887701"),
	0xF192: {0x01, 0x00},
	0xF194: []byte("IP-SW-09.03.11"),
	0x0700: {0x02},
	0x0701: {0x00}, // 0 = mph, 1 = km/h
	0xF100: {0x00, 0x01},
}

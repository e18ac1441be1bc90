package catalog

// BCMDIDResponses are the literal byte payloads the emulator returns for
// BCM DID reads (service 0x22), captured from a real vehicle so the
// emulator can be regression-tested against observed traces (spec.md
// §4.E). Keys are the two-byte DID; values are the bytes following the
// positive-response header (i.e. what follows `62 <did_hi> <did_lo>`).
var BCMDIDResponses = map[uint16][]byte{
	0xF190: []byte("SAJBL4BVXGCY16353"), // VIN (captured-vehicle trace)
	0xF18C: []byte("BC00421178"),
	0xF192: {0x01, 0x02},
	0xF194: []byte("BC-SW-04.21.07"),
	0x0800: {0x03},
	0x0801: {0x01},
	0xDE00: bcmCCFBlock(),
	0xF100: {0x00, 0x02},
}

// bcmCCFBlock synthesizes a plausible 21-byte VDF header followed by
// CCFOptionCount option bytes, used by the emulator and by tests that
// exercise the cross-ECU CCF compare without a real vehicle attached.
func bcmCCFBlock() []byte {
	block := make([]byte, CCFHeaderOffset+CCFOptionCount)
	copy(block, []byte("BCMVDFHEADERV2-------"))
	for i := CCFHeaderOffset; i < len(block); i++ {
		block[i] = byte((i - CCFHeaderOffset) % 3)
	}
	return block
}

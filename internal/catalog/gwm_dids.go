package catalog

// GWMDIDResponses are the literal byte payloads the emulator returns for
// GWM DID reads, captured from a real vehicle (spec.md §4.E).
var GWMDIDResponses = map[uint16][]byte{
	0xF190: []byte("SAJBL4BVXGCY16353"),
	0xF18C: []byte("GW00119042"),
	0xF192: {0x02, 0x01},
	0xF194: []byte("GW-SW-02.18.03"),
	0x0300: {0x00, 0x01, 0x02, 0x03},
	0x0301: {0x0F},
	0x0400: {0x01, 0x02, 0x03, 0x04, 0x05},
	0x0401: []byte("GW-ROUTE-1.4"),
	0xEE00: gwmCCFBlock(),
	0xF100: {0x00, 0x00},
}

func gwmCCFBlock() []byte {
	block := make([]byte, CCFHeaderOffset+CCFOptionCount)
	copy(block, []byte("GWMVDFHEADERV2-------"))
	for i := CCFHeaderOffset; i < len(block); i++ {
		block[i] = byte((i - CCFHeaderOffset) % 3)
	}
	return block
}

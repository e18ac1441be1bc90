//go:build windows

package j2534

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// dllBinding loads a vendor pass-through DLL and resolves its eleven
// entry points through golang.org/x/sys/windows, the same
// NewLazySystemDLL/NewProc pattern used to bind the NDISAPI driver
// surface in the retrieval pack's wiresock-ndisapi-go source.
type dllBinding struct {
	mod *windows.LazyDLL

	open            *windows.LazyProc
	closeProc       *windows.LazyProc
	connect         *windows.LazyProc
	disconnect      *windows.LazyProc
	readMsgs        *windows.LazyProc
	writeMsgs       *windows.LazyProc
	startMsgFilter  *windows.LazyProc
	stopMsgFilter   *windows.LazyProc
	ioctl           *windows.LazyProc
	readVersion     *windows.LazyProc
	getLastError    *windows.LazyProc
}

// OpenBinding loads the DLL at libraryPath and resolves its procs. The
// DLL is not actually mapped into the process until the first call, per
// LazyDLL semantics.
func OpenBinding(libraryPath string) (Binding, error) {
	mod := windows.NewLazySystemDLL(libraryPath)
	b := &dllBinding{
		mod:            mod,
		open:           mod.NewProc("PassThruOpen"),
		closeProc:      mod.NewProc("PassThruClose"),
		connect:        mod.NewProc("PassThruConnect"),
		disconnect:     mod.NewProc("PassThruDisconnect"),
		readMsgs:       mod.NewProc("PassThruReadMsgs"),
		writeMsgs:      mod.NewProc("PassThruWriteMsgs"),
		startMsgFilter: mod.NewProc("PassThruStartMsgFilter"),
		stopMsgFilter:  mod.NewProc("PassThruStopMsgFilter"),
		ioctl:          mod.NewProc("PassThruIoctl"),
		readVersion:    mod.NewProc("PassThruReadVersion"),
		getLastError:   mod.NewProc("PassThruGetLastError"),
	}
	if err := b.mod.Load(); err != nil {
		return nil, fmt.Errorf("j2534: loading %s: %w", libraryPath, err)
	}
	return b, nil
}

func (b *dllBinding) Open(name string) (uint32, error) {
	var namePtr uintptr
	if name != "" {
		p, err := windows.BytePtrFromString(name)
		if err != nil {
			return 0, err
		}
		namePtr = uintptr(unsafe.Pointer(p))
	}
	var deviceID uint32
	ret, _, _ := b.open.Call(namePtr, uintptr(unsafe.Pointer(&deviceID)))
	if err := Status(ret).AsError(); err != nil {
		return 0, &StatusError{Status: Status(ret), Op: "PassThruOpen"}
	}
	return deviceID, nil
}

func (b *dllBinding) Close(deviceID uint32) error {
	ret, _, _ := b.closeProc.Call(uintptr(deviceID))
	if Status(ret) != StatusNoError {
		return &StatusError{Status: Status(ret), Op: "PassThruClose"}
	}
	return nil
}

func (b *dllBinding) Connect(deviceID, protocol, flags, baud uint32) (uint32, error) {
	var channelID uint32
	ret, _, _ := b.connect.Call(
		uintptr(deviceID), uintptr(protocol), uintptr(flags), uintptr(baud),
		uintptr(unsafe.Pointer(&channelID)),
	)
	if Status(ret) != StatusNoError {
		return 0, &StatusError{Status: Status(ret), Op: "PassThruConnect"}
	}
	return channelID, nil
}

func (b *dllBinding) Disconnect(channelID uint32) error {
	ret, _, _ := b.disconnect.Call(uintptr(channelID))
	if Status(ret) != StatusNoError {
		return &StatusError{Status: Status(ret), Op: "PassThruDisconnect"}
	}
	return nil
}

func (b *dllBinding) StartMsgFilter(channelID, filterType uint32, mask, pattern, flowControl *Envelope) (uint32, error) {
	maskBuf, _ := mask.MarshalBinary()
	patternBuf, _ := pattern.MarshalBinary()
	var fcPtr uintptr
	var fcBuf []byte
	if flowControl != nil {
		fcBuf, _ = flowControl.MarshalBinary()
		fcPtr = uintptr(unsafe.Pointer(&fcBuf[0]))
	}
	var filterID uint32
	ret, _, _ := b.startMsgFilter.Call(
		uintptr(channelID), uintptr(filterType),
		uintptr(unsafe.Pointer(&maskBuf[0])),
		uintptr(unsafe.Pointer(&patternBuf[0])),
		fcPtr,
		uintptr(unsafe.Pointer(&filterID)),
	)
	if Status(ret) != StatusNoError {
		return 0, &StatusError{Status: Status(ret), Op: "PassThruStartMsgFilter"}
	}
	return filterID, nil
}

func (b *dllBinding) StopMsgFilter(channelID, filterID uint32) error {
	ret, _, _ := b.stopMsgFilter.Call(uintptr(channelID), uintptr(filterID))
	if Status(ret) != StatusNoError {
		return &StatusError{Status: Status(ret), Op: "PassThruStopMsgFilter"}
	}
	return nil
}

func (b *dllBinding) ReadMsgs(channelID uint32, out []Envelope, timeout time.Duration) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}
	buf := make([]byte, EnvelopeSize*len(out))
	numMsgs := uint32(len(out))
	ret, _, _ := b.readMsgs.Call(
		uintptr(channelID),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&numMsgs)),
		uintptr(timeout.Milliseconds()),
	)
	st := Status(ret)
	if st != StatusNoError && !st.IsBenign() {
		return 0, &StatusError{Status: st, Op: "PassThruReadMsgs"}
	}
	n := int(numMsgs)
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		if err := out[i].UnmarshalBinary(buf[i*EnvelopeSize : (i+1)*EnvelopeSize]); err != nil {
			return i, err
		}
	}
	return n, nil
}

func (b *dllBinding) WriteMsgs(channelID uint32, msgs []Envelope, timeout time.Duration) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}
	flat := make([]byte, 0, EnvelopeSize*len(msgs))
	for i := range msgs {
		buf, _ := msgs[i].MarshalBinary()
		flat = append(flat, buf...)
	}
	numMsgs := uint32(len(msgs))
	ret, _, _ := b.writeMsgs.Call(
		uintptr(channelID),
		uintptr(unsafe.Pointer(&flat[0])),
		uintptr(unsafe.Pointer(&numMsgs)),
		uintptr(timeout.Milliseconds()),
	)
	if Status(ret) != StatusNoError {
		return int(numMsgs), &StatusError{Status: Status(ret), Op: "PassThruWriteMsgs"}
	}
	return int(numMsgs), nil
}

func (b *dllBinding) Ioctl(channelID, ioctlID uint32, params map[uint32]uint32) error {
	type sconfig struct {
		Parameter uint32
		Value     uint32
	}
	list := make([]sconfig, 0, len(params))
	for id, value := range params {
		list = append(list, sconfig{Parameter: id, Value: value})
	}
	type sconfigList struct {
		NumOfParams uint32
		ConfigPtr   uintptr
	}
	cfg := sconfigList{NumOfParams: uint32(len(list))}
	if len(list) > 0 {
		cfg.ConfigPtr = uintptr(unsafe.Pointer(&list[0]))
	}
	ret, _, _ := b.ioctl.Call(
		uintptr(channelID), uintptr(ioctlID),
		uintptr(unsafe.Pointer(&cfg)), 0,
	)
	if Status(ret) != StatusNoError {
		return &StatusError{Status: Status(ret), Op: "PassThruIoctl"}
	}
	return nil
}

func (b *dllBinding) ReadVersion(deviceID uint32) (string, string, string, error) {
	var fw, dll, api [80]byte
	ret, _, _ := b.readVersion.Call(
		uintptr(deviceID),
		uintptr(unsafe.Pointer(&fw[0])),
		uintptr(unsafe.Pointer(&dll[0])),
		uintptr(unsafe.Pointer(&api[0])),
	)
	if Status(ret) != StatusNoError {
		return "", "", "", &StatusError{Status: Status(ret), Op: "PassThruReadVersion"}
	}
	return cString(dll[:]), cString(api[:]), cString(fw[:]), nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// registryAdapterKeys are the two views a J2534 adapter can register
// under, depending on whether it shipped a 32-bit or 64-bit DLL.
var registryAdapterKeys = []string{
	`SOFTWARE\PassThruSupport.04.04`,
	`SOFTWARE\WOW6432Node\PassThruSupport.04.04`,
}

// DiscoverAdapters enumerates installed pass-through adapters from the
// vendor registry convention, reading both the native and WOW64 views so
// a 32-bit adapter DLL is found on a 64-bit host too.
func DiscoverAdapters() ([]AdapterInfo, error) {
	var adapters []AdapterInfo
	for _, path := range registryAdapterKeys {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.READ)
		if err != nil {
			continue
		}
		names, err := key.ReadSubKeyNames(-1)
		key.Close()
		if err != nil {
			continue
		}
		for _, name := range names {
			sub, err := registry.OpenKey(registry.LOCAL_MACHINE, path+`\`+name, registry.READ)
			if err != nil {
				continue
			}
			vendor, _, _ := sub.GetStringValue("Vendor")
			libPath, _, _ := sub.GetStringValue("FunctionLibrary")
			sub.Close()
			if libPath == "" {
				continue
			}
			adapters = append(adapters, AdapterInfo{
				Name:        name,
				VendorName:  vendor,
				LibraryPath: libPath,
			})
		}
	}
	return adapters, nil
}

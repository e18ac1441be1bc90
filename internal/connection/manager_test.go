package connection

import (
	"testing"
	"time"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/j2534"
)

func newTestManager(t *testing.T) (*Manager, *j2534.Mock) {
	t.Helper()
	m := New(nil)
	mock := j2534.NewMock()
	m.opn = opener{
		open:     func(string) (j2534.Binding, error) { return mock, nil },
		discover: func() ([]j2534.AdapterInfo, error) { return nil, nil },
	}
	return m, mock
}

func TestConnectWithExplicitPath(t *testing.T) {
	m, _ := newTestManager(t)

	info, err := m.Connect(`C:\fake\monpj432.dll`)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if info.LibraryPath != `C:\fake\monpj432.dll` {
		t.Errorf("LibraryPath = %q", info.LibraryPath)
	}
	if !m.Connected() {
		t.Error("expected Connected() true")
	}
}

func TestConnectTwiceFails(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Connect("x"); err != nil {
		t.Fatalf("first connect: %v", err)
	}
	if _, err := m.Connect("x"); err == nil {
		t.Fatal("expected second connect to fail")
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Disconnect(); err != nil {
		t.Fatalf("disconnect while never connected: %v", err)
	}
	if _, err := m.Connect("x"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := m.Disconnect(); err != nil {
		t.Fatalf("first disconnect: %v", err)
	}
	if err := m.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
	if m.Connected() {
		t.Error("expected Connected() false after disconnect")
	}
}

func TestConnectFallsBackToDiscoveredAdapter(t *testing.T) {
	m := New(nil)
	mock := j2534.NewMock()
	tried := []string{}
	m.opn = opener{
		open: func(path string) (j2534.Binding, error) {
			tried = append(tried, path)
			return mock, nil
		},
		discover: func() ([]j2534.AdapterInfo, error) {
			return []j2534.AdapterInfo{{Name: "MongoosePro", LibraryPath: `C:\discovered\mp.dll`}}, nil
		},
	}

	info, err := m.Connect("")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if info.LibraryPath != `C:\discovered\mp.dll` {
		t.Errorf("LibraryPath = %q, want discovered path", info.LibraryPath)
	}
	if len(tried) != 1 || tried[0] != `C:\discovered\mp.dll` {
		t.Errorf("tried = %v", tried)
	}
}

func TestToggleBenchModeRequiresConnection(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.ToggleBenchMode(true, []catalog.ECU{catalog.BCM}); err == nil {
		t.Fatal("expected error when not connected")
	}
}

func TestToggleBenchModeOnAndOff(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Connect("x"); err != nil {
		t.Fatalf("connect: %v", err)
	}

	status, err := m.ToggleBenchMode(true, []catalog.ECU{catalog.BCM, catalog.GWM})
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !status.Enabled || len(status.EmulatedECUs) != 2 {
		t.Errorf("status = %+v", status)
	}
	if m.Emulator() == nil {
		t.Error("expected an active emulator")
	}

	status, err = m.ToggleBenchMode(false, nil)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if status.Enabled {
		t.Error("expected disabled status")
	}
	if m.Emulator() != nil {
		t.Error("expected emulator cleared")
	}
}

func TestToggleBenchModeDefaultsToBCM(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Connect("x"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	status, err := m.ToggleBenchMode(true, nil)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if len(status.EmulatedECUs) != 1 || status.EmulatedECUs[0] != catalog.BCM {
		t.Errorf("status.EmulatedECUs = %v, want [BCM]", status.EmulatedECUs)
	}
}

func TestToggleBenchModeRejectsIMC(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Connect("x"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := m.ToggleBenchMode(true, []catalog.ECU{catalog.IMC}); err == nil {
		t.Fatal("expected error emulating IMC")
	}
}

func TestSwapForBroadcastRestoresISOTPChannel(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Connect("x"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	before, _, _ := m.Binding()

	if err := m.SwapForBroadcast(10 * time.Millisecond); err != nil {
		t.Fatalf("SwapForBroadcast: %v", err)
	}

	after, channelID, ok := m.Binding()
	if !ok || after != before || channelID == 0 {
		t.Errorf("Binding() after swap = %v, %v, %v", after, channelID, ok)
	}
}

func TestSwapForBroadcastRequiresConnection(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.SwapForBroadcast(time.Millisecond); err == nil {
		t.Fatal("expected error when not connected")
	}
}

func TestBindingReturnsChannelWhenConnected(t *testing.T) {
	m, _ := newTestManager(t)
	if _, _, ok := m.Binding(); ok {
		t.Fatal("expected ok=false before connecting")
	}
	if _, err := m.Connect("x"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	binding, channelID, ok := m.Binding()
	if !ok || binding == nil || channelID == 0 {
		t.Errorf("Binding() = %v, %v, %v", binding, channelID, ok)
	}
}

// Command bench connects to the adapter and toggles bench-mode emulation
// for a set of ECUs, holding the connection open until interrupted.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/config"
	"jlrdiag/internal/connection"
	"jlrdiag/internal/logsink"
)

func main() {
	var (
		configPath string
		adapter    string
		ecuList    string
		swap       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&adapter, "adapter", "", "J2534 DLL path (empty = auto-detect)")
	flag.StringVar(&ecuList, "ecus", "bcm", "Comma-separated ECUs to emulate: bcm,gwm,ipc")
	flag.BoolVar(&swap, "swap", false, "Run the single-channel swap-for-broadcast sequence once, then exit")
	flag.Parse()

	var ecus []catalog.ECU
	for _, name := range strings.Split(ecuList, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ecu, ok := catalog.ECUFromString(name)
		if !ok {
			log.Fatalf("unknown ECU %q", name)
		}
		ecus = append(ecus, ecu)
	}

	cfg := &config.Config{}
	cfg.Bench.SwapForBroadcastSeconds = 30
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
		if adapter == "" {
			adapter = cfg.Adapter.LibraryPath
		}
	}

	sink := logsink.NewLogrusSink(nil)
	conn := connection.New(sink)
	if _, err := conn.Connect(adapter); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Disconnect()

	if swap {
		d := time.Duration(cfg.Bench.SwapForBroadcastSeconds) * time.Second
		if err := conn.SwapForBroadcast(d); err != nil {
			log.Fatalf("swap for broadcast: %v", err)
		}
		fmt.Println("channel swap complete")
		return
	}

	status, err := conn.ToggleBenchMode(true, ecus)
	if err != nil {
		log.Fatalf("enable bench mode: %v", err)
	}
	fmt.Printf("bench mode on, broadcasting=%v, emulating=%v\n", status.Broadcasting, status.EmulatedECUs)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	if _, err := conn.ToggleBenchMode(false, nil); err != nil {
		log.Printf("disable bench mode: %v", err)
	}
}

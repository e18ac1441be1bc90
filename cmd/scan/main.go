// Command scan connects to the adapter and sweeps one ECU's fixed DID
// list, optionally dumping the result to JSON and/or SQLite history.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"jlrdiag/internal/catalog"
	"jlrdiag/internal/config"
	"jlrdiag/internal/connection"
	"jlrdiag/internal/datastore"
	"jlrdiag/internal/logsink"
	"jlrdiag/internal/orchestrator"
)

func main() {
	var (
		configPath string
		ecuName    string
		adapter    string
		formatJSON bool
		dumpDir    string
	)

	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&ecuName, "ecu", "bcm", "ECU to scan: imc, bcm, gwm, ipc")
	flag.StringVar(&adapter, "adapter", "", "J2534 DLL path (empty = auto-detect)")
	flag.BoolVar(&formatJSON, "json", false, "Output in JSON format")
	flag.StringVar(&dumpDir, "dump", "", "Directory to write a scan_*.json dump (empty = skip)")
	flag.Parse()

	ecu, ok := catalog.ECUFromString(ecuName)
	if !ok {
		log.Fatalf("unknown ECU %q", ecuName)
	}

	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
		if adapter == "" {
			adapter = cfg.Adapter.LibraryPath
		}
		if dumpDir == "" {
			dumpDir = cfg.Datastore.DumpDir
		}
	}

	sink := logsink.NewLogrusSink(nil)
	conn := connection.New(sink)
	if _, err := conn.Connect(adapter); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Disconnect()

	o := orchestrator.New(conn, sink)
	result, err := o.ScanECU(ecu)
	if err != nil {
		log.Fatalf("scan %s: %v", ecu, err)
	}

	if dumpDir != "" {
		entries, err := json.Marshal(result.DIDs)
		if err != nil {
			log.Fatalf("marshal scan entries: %v", err)
		}
		path, err := datastore.DumpScan(dumpDir, datastore.ScanDump{
			ECU:       ecu.String(),
			Timestamp: time.Now(),
			Entries:   entries,
		})
		if err != nil {
			log.Fatalf("dump scan: %v", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	}

	if formatJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("marshal result: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("%s: %d/%d DIDs OK\n", result.Vehicle, result.OKCount, result.TotalDIDs)
	for _, e := range result.DIDs {
		if e.OK {
			fmt.Printf("  %-20s %s = %s\n", e.Label, e.DIDHex, e.ASCII)
		} else {
			fmt.Printf("  %-20s %s FAILED: %s\n", e.Label, e.DIDHex, e.Error)
		}
	}
}

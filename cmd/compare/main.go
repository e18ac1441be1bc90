// Command compare connects to the adapter and runs the cross-ECU CCF
// comparison across GWM, BCM, and IMC, reporting any mismatched options.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"jlrdiag/internal/config"
	"jlrdiag/internal/connection"
	"jlrdiag/internal/datastore"
	"jlrdiag/internal/logsink"
	"jlrdiag/internal/orchestrator"
)

func main() {
	var (
		configPath string
		adapter    string
		formatJSON bool
		dumpDir    string
	)

	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&adapter, "adapter", "", "J2534 DLL path (empty = auto-detect)")
	flag.BoolVar(&formatJSON, "json", false, "Output in JSON format")
	flag.StringVar(&dumpDir, "dump", "", "Directory to write a ccf_*.json dump (empty = skip)")
	flag.Parse()

	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
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
	result, err := o.CompareCCF()
	if err != nil {
		log.Fatalf("compare CCF: %v", err)
	}

	if dumpDir != "" {
		options, err := json.Marshal(result.Options)
		if err != nil {
			log.Fatalf("marshal CCF options: %v", err)
		}
		path, err := datastore.DumpCCFCompare(dumpDir, datastore.CCFCompareDump{
			Timestamp:  time.Now(),
			Mismatches: result.Mismatches,
			Options:    options,
		})
		if err != nil {
			log.Fatalf("dump CCF compare: %v", err)
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

	fmt.Printf("%d mismatched option(s) of %d\n", result.Mismatches, len(result.Options))
	for _, row := range result.Options {
		if !row.Mismatch {
			continue
		}
		fmt.Printf("  [%3d] %-30s GWM=%s BCM=%s IMC=%s\n", row.ID, row.Name, row.GWM, row.BCM, row.IMC)
	}
}

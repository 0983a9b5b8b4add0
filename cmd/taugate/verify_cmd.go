package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/taugate/kernel/pkg/eventlog"
	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// runVerifyCmd re-derives every prev_hash link in an exported event log
// and re-checks every signature, entirely offline: no database, no
// network call, just the exported events and the signers' public keys.
//
// Exit codes:
//
//	0 = chain valid
//	1 = chain invalid
//	2 = runtime error
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var eventsPath, keysPath string
	var jsonOutput bool
	cmd.StringVar(&eventsPath, "events", "", "Path to a JSON-exported []types.Event bundle (REQUIRED)")
	cmd.StringVar(&keysPath, "keys", "", "Path to a JSON map of actor id -> did:key (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the verification result as JSON")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if eventsPath == "" || keysPath == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --events and --keys are required")
		return 2
	}

	eventsRaw, err := os.ReadFile(eventsPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: read events: %v\n", err)
		return 2
	}
	var events []types.Event
	if err := json.Unmarshal(eventsRaw, &events); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: parse events: %v\n", err)
		return 2
	}

	keysRaw, err := os.ReadFile(keysPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: read keys: %v\n", err)
		return 2
	}
	var dids map[string]string
	if err := json.Unmarshal(keysRaw, &dids); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: parse keys: %v\n", err)
		return 2
	}

	ks := keystore.New()
	for actor, did := range dids {
		pub, err := keystore.DecodeDIDKey(did)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: decode did:key for %s: %v\n", actor, err)
			return 2
		}
		if err := ks.ImportPublicKey(types.ActorId(actor), pub); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: import key for %s: %v\n", actor, err)
			return 2
		}
	}

	log := eventlog.New(ks)
	log.Import(events)
	result := log.VerifyChain(ks)

	if jsonOutput {
		data, _ := json.MarshalIndent(result, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else if result.Valid {
		_, _ = fmt.Fprintf(stdout, "chain valid: %d events verified\n", result.EventsVerified)
	} else {
		_, _ = fmt.Fprintln(stdout, "chain invalid:")
		for _, e := range result.Errors {
			_, _ = fmt.Fprintf(stdout, "  - %s\n", e)
		}
	}

	if !result.Valid {
		return 1
	}
	return 0
}

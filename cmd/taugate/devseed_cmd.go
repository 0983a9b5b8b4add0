package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// runDevseedCmd derives deterministic Ed25519 keys for a fixed set of
// actors from a single hex-encoded seed, so dev and CI environments can
// reproduce the same actor identities across runs without persisting
// private keys anywhere.
func runDevseedCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("devseed", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var seedHex, actorsCSV string
	cmd.StringVar(&seedHex, "seed", "", "Hex-encoded seed (REQUIRED)")
	cmd.StringVar(&actorsCSV, "actors", "", "Comma-separated actor ids, e.g. agent:bot,provider:openai (REQUIRED)")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if seedHex == "" || actorsCSV == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --seed and --actors are required")
		return 2
	}

	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: --seed must be hex: %v\n", err)
		return 2
	}

	var actors []types.ActorId
	for _, a := range strings.Split(actorsCSV, ",") {
		actors = append(actors, types.ActorId(strings.TrimSpace(a)))
	}

	ks := keystore.New()
	if err := keystore.SeedFixture(ks, seed, actors); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: seed fixture: %v\n", err)
		return 2
	}

	for _, actor := range actors {
		pub, ok := ks.PublicKey(actor)
		if !ok {
			_, _ = fmt.Fprintf(stderr, "Error: no key derived for %s\n", actor)
			return 2
		}
		did, err := keystore.EncodeDIDKey(pub)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: encode did:key for %s: %v\n", actor, err)
			return 2
		}
		_, _ = fmt.Fprintf(stdout, "%s\t%s\n", actor, did)
	}
	return 0
}

//go:build property
// +build property

package eventlog_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/taugate/kernel/pkg/eventlog"
	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// TestEventLogVerifyAfterImport verifies that any append-only sequence
// of events built through Append verifies successfully after a round
// trip through Export and Import into a fresh Log sharing the same
// keystore — the hash chain and signatures survive serialization.
func TestEventLogVerifyAfterImport(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("event log verifies after export/import round trip", prop.ForAll(
		func(payloads []string) bool {
			ks := keystore.New()
			actor := types.ActorId("agent:property-test")
			if _, err := ks.EnsureKey(actor); err != nil {
				return false
			}

			log := eventlog.New(ks)
			for _, p := range payloads {
				if _, err := log.Append(types.EventType("MANDATE_CREATE"), actor, map[string]interface{}{"v": p}); err != nil {
					return false
				}
			}

			exported := log.Export()
			reimported := eventlog.New(ks)
			reimported.Import(exported)

			result := reimported.VerifyChain(ks)
			return result.Valid && result.EventsVerified == len(payloads)
		},
		gen.SliceOfN(8, gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestEventLogTamperDetection verifies that mutating any single
// event's payload after export is always caught by VerifyChain,
// because the mutated event's signature no longer matches its digest.
func TestEventLogTamperDetection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("tampering with any event payload invalidates the chain", prop.ForAll(
		func(payloads []string, tamperIndex int) bool {
			if len(payloads) == 0 {
				return true
			}

			ks := keystore.New()
			actor := types.ActorId("agent:property-test")
			if _, err := ks.EnsureKey(actor); err != nil {
				return false
			}

			log := eventlog.New(ks)
			for _, p := range payloads {
				if _, err := log.Append(types.EventType("MANDATE_CREATE"), actor, map[string]interface{}{"v": p}); err != nil {
					return false
				}
			}

			exported := log.Export()
			idx := tamperIndex % len(exported)
			exported[idx].Payload["v"] = "tampered"

			reimported := eventlog.New(ks)
			reimported.Import(exported)

			return !reimported.VerifyChain(ks).Valid
		},
		gen.SliceOfN(5, gen.AlphaString()),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}

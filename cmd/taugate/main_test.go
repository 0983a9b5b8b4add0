package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taugate/kernel/pkg/eventlog"
	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/taugate/types"
)

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"taugate"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "Usage:")
}

func TestRun_HelpPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"taugate", "help"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "Usage:")
}

func TestRun_UnknownCommandPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"taugate", "bogus"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "Usage:")
}

func TestRun_DevseedRoundTrip(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"taugate", "devseed", "--seed", "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff", "--actors", "agent:bot,provider:openai"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stdout.String(), "agent:bot")
	require.Contains(t, stdout.String(), "did:key:z")
}

func TestRun_DevseedMissingFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"taugate", "devseed"}, &stdout, &stderr)
	require.Equal(t, 2, code)
}

func TestRun_VerifyMissingFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"taugate", "verify"}, &stdout, &stderr)
	require.Equal(t, 2, code)
}

func TestRun_MigrateMissingFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"taugate", "migrate"}, &stdout, &stderr)
	require.Equal(t, 2, code)
}

func TestRun_VerifyRoundTrip(t *testing.T) {
	actor := types.ActorId("agent:bot")

	ks := keystore.New()
	_, err := ks.EnsureKey(actor)
	require.NoError(t, err)
	pub, ok := ks.PublicKey(actor)
	require.True(t, ok)
	did, err := keystore.EncodeDIDKey(pub)
	require.NoError(t, err)

	log := eventlog.New(ks)
	_, err = log.Append(types.EventType("MANDATE_CREATE"), actor, map[string]interface{}{"foo": "bar"})
	require.NoError(t, err)
	_, err = log.Append(types.EventType("PROPOSAL_COMMIT"), actor, map[string]interface{}{"baz": "qux"})
	require.NoError(t, err)

	dir := t.TempDir()
	eventsPath := filepath.Join(dir, "events.json")
	keysPath := filepath.Join(dir, "keys.json")

	eventsJSON, err := json.Marshal(log.Export())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(eventsPath, eventsJSON, 0o644))

	keysJSON, err := json.Marshal(map[string]string{string(actor): did})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(keysPath, keysJSON, 0o644))

	var stdout, stderr bytes.Buffer
	code := Run([]string{"taugate", "verify", "--events", eventsPath, "--keys", keysPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stdout.String(), "chain valid: 2 events verified")
}

func TestRun_VerifyDetectsTamperedEvent(t *testing.T) {
	actor := types.ActorId("agent:bot")

	ks := keystore.New()
	_, err := ks.EnsureKey(actor)
	require.NoError(t, err)
	pub, ok := ks.PublicKey(actor)
	require.True(t, ok)
	did, err := keystore.EncodeDIDKey(pub)
	require.NoError(t, err)

	log := eventlog.New(ks)
	_, err = log.Append(types.EventType("MANDATE_CREATE"), actor, map[string]interface{}{"foo": "bar"})
	require.NoError(t, err)

	events := log.Export()
	events[0].Payload["foo"] = "tampered"

	dir := t.TempDir()
	eventsPath := filepath.Join(dir, "events.json")
	keysPath := filepath.Join(dir, "keys.json")

	eventsJSON, err := json.Marshal(events)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(eventsPath, eventsJSON, 0o644))

	keysJSON, err := json.Marshal(map[string]string{string(actor): did})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(keysPath, keysJSON, 0o644))

	var stdout, stderr bytes.Buffer
	code := Run([]string{"taugate", "verify", "--events", eventsPath, "--keys", keysPath}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stdout.String(), "chain invalid")
}

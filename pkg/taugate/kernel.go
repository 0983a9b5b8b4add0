// Package taugate implements the τ-Gate adapter kernel: a two-phase
// propose/commit state machine that interposes on every tool call an
// agent wants to make, and that only ever executes a call once a
// signed, unrevoked, in-scope mandate has been checked.
package taugate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/taugate/kernel/pkg/canonicalize"
	"github.com/taugate/kernel/pkg/eventlog"
	"github.com/taugate/kernel/pkg/keystore"
	"github.com/taugate/kernel/pkg/mandate"
	"github.com/taugate/kernel/pkg/mirror"
	"github.com/taugate/kernel/pkg/observability"
	"github.com/taugate/kernel/pkg/receipt"
	"github.com/taugate/kernel/pkg/taugate/errs"
	"github.com/taugate/kernel/pkg/taugate/executor"
	"github.com/taugate/kernel/pkg/taugate/types"
)

// Locker provides cross-process mutual exclusion for kernel instances
// sharing state outside this process (e.g. via a shared SQL/blob
// backend). It is NOT a consensus mechanism — callers that need
// distributed consistency guarantees beyond "only one commit runs at a
// time" must build that themselves. A nil Locker is valid: the kernel
// still serializes propose/commit in-process via its own mutex.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// Kernel is one sovereignty kernel instance: a keystore, event log,
// mandate/receipt modules, mirror store and in-flight proposal table,
// all guarded by a single exclusive lock per the concurrency model
// (§5): propose and commit hold it for their full duration, never
// fine-grained per-substructure.
type Kernel struct {
	mu sync.Mutex

	keystore      *keystore.Keystore
	log           *eventlog.Log
	mandates      *mandate.Module
	receipts      *receipt.Module
	chain         *receipt.Chain
	mirror        *mirror.Store
	adapterID     types.ActorId
	locker        Locker
	observability *observability.Provider
	logger        *slog.Logger

	proposals map[string]*types.Proposal
}

// Config wires a kernel's collaborators together.
type Config struct {
	Keystore      *keystore.Keystore
	Log           *eventlog.Log
	Mandates      *mandate.Module
	Receipts      *receipt.Module
	Chain         *receipt.Chain
	Mirror        *mirror.Store
	AdapterID     types.ActorId
	Locker        Locker                  // optional
	Observability *observability.Provider // optional; nil disables tracing/metrics
}

// New creates a kernel from fully-wired collaborators.
func New(cfg Config) *Kernel {
	return &Kernel{
		keystore:      cfg.Keystore,
		log:           cfg.Log,
		mandates:      cfg.Mandates,
		receipts:      cfg.Receipts,
		chain:         cfg.Chain,
		mirror:        cfg.Mirror,
		adapterID:     cfg.AdapterID,
		locker:        cfg.Locker,
		observability: cfg.Observability,
		logger:        slog.Default().With("component", "taugate"),
		proposals:     make(map[string]*types.Proposal),
	}
}

// NewDefault builds a kernel with a fresh in-memory keystore, event
// log, mandate/receipt modules and receipt chain — the common case for
// a single-process deployment with no shared backing store. It has no
// observability provider wired; use New with Config.Observability set
// for a kernel that emits traces and RED metrics.
func NewDefault(adapterID types.ActorId) *Kernel {
	ks := keystore.New()
	log := eventlog.New(ks)
	return New(Config{
		Keystore:  ks,
		Log:       log,
		Mandates:  mandate.New(ks, log),
		Receipts:  receipt.New(ks),
		Chain:     receipt.NewChain(),
		Mirror:    mirror.New(),
		AdapterID: adapterID,
	})
}

// trackOperation starts a span and RED-metric measurement for name if
// an observability provider is wired; otherwise it is a no-op so every
// Propose/Commit call site can use it unconditionally.
func (k *Kernel) trackOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	if k.observability == nil {
		return ctx, func(error) {}
	}
	return k.observability.TrackOperation(ctx, name, attrs...)
}

func (k *Kernel) lock(ctx context.Context) (func(), error) {
	k.mu.Lock()
	if k.locker == nil {
		return k.mu.Unlock, nil
	}
	unlock, err := k.locker.Lock(ctx)
	if err != nil {
		k.mu.Unlock()
		return nil, fmt.Errorf("taugate: acquire distributed lock: %w", err)
	}
	return func() {
		unlock()
		k.mu.Unlock()
	}, nil
}

// Propose captures the agent's intended action via the mirror, records
// a signed SUGGESTION event, and allocates a pending proposal. No
// mandate verification occurs here — that is entirely commit's job.
func (k *Kernel) Propose(ctx context.Context, agent types.ActorId, action, prompt string, estimatedCost float64, providerMetadata map[string]interface{}) (result types.Proposal, err error) {
	ctx, done := k.trackOperation(ctx, "taugate.propose",
		observability.AttrActorID.String(string(agent)),
	)
	defer func() { done(err) }()

	release, err := k.lock(ctx)
	if err != nil {
		return types.Proposal{}, err
	}
	defer release()

	if _, err = k.keystore.EnsureKey(agent); err != nil {
		return types.Proposal{}, fmt.Errorf("taugate: ensure agent key: %w", err)
	}

	entry, err := k.mirror.CaptureRequest(agent, prompt, providerMetadata)
	if err != nil {
		return types.Proposal{}, fmt.Errorf("taugate: mirror capture: %w", err)
	}

	ev, err := k.log.Append(types.EventSuggestion, agent, map[string]interface{}{
		"mirror_ref":       entry.ID,
		"agent_id":         string(agent),
		"proposed_action":  action,
		"estimated_cost":   estimatedCost,
	})
	if err != nil {
		return types.Proposal{}, fmt.Errorf("taugate: record suggestion: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return types.Proposal{}, fmt.Errorf("taugate: generate proposal id: %w", err)
	}

	proposal := &types.Proposal{
		ID:        "proposal_" + id.String(),
		Action:    action,
		MirrorRef: entry.ID,
		EventID:   ev.ID,
		Status:    types.ProposalPending,
		CreatedAt: ev.Timestamp,
	}
	k.proposals[proposal.ID] = proposal

	k.logger.InfoContext(ctx, "proposal recorded",
		"proposal_id", proposal.ID, "agent", agent, "action", action)

	return *proposal, nil
}

// CommitResult is the outcome of a successful commit.
type CommitResult struct {
	Output  interface{}
	Receipt types.Receipt
}

// Commit runs the gate sequence against md for the named proposal and,
// if every gate passes, executes the tool call and issues a receipt.
// Gates are checked in order and the first failure short-circuits the
// rest: (1) mandate signature & temporal validity, (2) explicit
// revocation recheck, (3) scope check on the proposed action. Resource
// and budget checks are left to the wrapping layer as overridable
// hooks, not enforced by this core gate sequence.
func (k *Kernel) Commit(ctx context.Context, proposalID string, md types.Mandate, exec executor.ToolExecutor, input map[string]interface{}) (result CommitResult, err error) {
	ctx, done := k.trackOperation(ctx, "taugate.commit",
		observability.AttrProposalID.String(proposalID),
		observability.AttrMandateID.String(md.MandateID),
	)
	defer func() { done(err) }()

	release, err := k.lock(ctx)
	if err != nil {
		return CommitResult{}, err
	}
	defer release()

	proposal, ok := k.proposals[proposalID]
	if !ok {
		return CommitResult{}, errs.ErrProposalNotFound
	}
	switch proposal.Status {
	case types.ProposalCommitted:
		return CommitResult{}, errs.ErrProposalCommitted
	case types.ProposalRejected:
		return CommitResult{}, errs.ErrProposalRejected
	}

	// Gate 1: signature & temporal validity. A verify result whose only
	// failure is revocation falls through to gate 2.
	verify := k.mandates.Verify(md)
	revokedOnly := len(verify.Errors) == 1 && verify.Errors[0] == "mandate revoked"
	if !verify.Valid() && !revokedOnly {
		err = k.reject(proposal, errs.NewInvalidMandate(joinErrors(verify.Errors)))
		return CommitResult{}, err
	}

	// Gate 2: explicit revocation recheck (Verify already checks this;
	// kept as its own gate so the rejection reason is precise when
	// revocation is the sole cause).
	if k.log.IsMandateRevoked(md.MandateID) {
		err = k.reject(proposal, errs.NewRevokedMandate("mandate has been revoked"))
		return CommitResult{}, err
	}

	// Gate 3: scope check.
	if !mandate.IsActionAllowed(md, proposal.Action) {
		err = k.reject(proposal, errs.NewScopeViolation(fmt.Sprintf("action %q not in mandate scope", proposal.Action)))
		return CommitResult{}, err
	}

	// Execute: record COMMITTED before running the tool call — the
	// attempt is auditable even if execution subsequently faults.
	if _, err = k.log.Append(types.EventCommitted, md.Delegate, map[string]interface{}{
		"proposal_id": proposal.ID,
		"mandate_id":  md.MandateID,
		"action":      proposal.Action,
	}); err != nil {
		return CommitResult{}, fmt.Errorf("taugate: record committed event: %w", err)
	}

	output, execErr := exec.Execute(ctx, proposal.Action, input)
	if execErr != nil {
		k.logger.ErrorContext(ctx, "tool execution failed",
			"proposal_id", proposal.ID, "mandate_id", md.MandateID, "error", execErr)
		if _, logErr := k.log.Append(types.EventExecutionFailed, k.adapterID, map[string]interface{}{
			"proposal_id": proposal.ID,
			"mandate_id":  md.MandateID,
			"error":       execErr.Error(),
		}); logErr != nil {
			err = fmt.Errorf("taugate: record execution failure: %w (original error: %v)", logErr, execErr)
			return CommitResult{}, err
		}
		err = fmt.Errorf("taugate: tool execution failed: %w", execErr)
		return CommitResult{}, err
	}

	if _, err = k.keystore.EnsureKey(md.Issuer); err != nil {
		return CommitResult{}, fmt.Errorf("taugate: ensure issuer key: %w", err)
	}

	responseHash, err := canonicalize.CanonicalHash(output)
	if err != nil {
		return CommitResult{}, fmt.Errorf("taugate: hash response: %w", err)
	}

	rc, err := k.receipts.Issue(receipt.IssueParams{
		MandateID:    md.MandateID,
		Actor:        k.adapterID,
		Action:       proposal.Action,
		RequestHash:  proposal.MirrorRef, // per design notes: references the mirror entry, not a fresh hash
		ResponseHash: responseHash,
		MirrorRef:    proposal.MirrorRef,
	})
	if err != nil {
		return CommitResult{}, fmt.Errorf("taugate: issue receipt: %w", err)
	}

	if _, err = k.chain.Add(rc); err != nil {
		return CommitResult{}, fmt.Errorf("taugate: append receipt chain: %w", err)
	}

	if _, err = k.log.Append(types.EventReceiptIssued, md.Issuer, map[string]interface{}{
		"receipt_id":  rc.ReceiptID,
		"mandate_id":  md.MandateID,
		"proposal_id": proposal.ID,
	}); err != nil {
		return CommitResult{}, fmt.Errorf("taugate: record receipt issued event: %w", err)
	}

	proposal.Status = types.ProposalCommitted

	k.logger.InfoContext(ctx, "proposal committed",
		"proposal_id", proposal.ID, "mandate_id", md.MandateID, "receipt_id", rc.ReceiptID)

	return CommitResult{Output: output, Receipt: rc}, nil
}

func (k *Kernel) reject(proposal *types.Proposal, gateErr *errs.GateError) error {
	proposal.Status = types.ProposalRejected
	k.logger.Warn("proposal rejected",
		"proposal_id", proposal.ID, "reason", gateErr.Code, "detail", gateErr.Detail)
	if _, err := k.log.Append(types.EventProposalRejected, k.adapterID, map[string]interface{}{
		"proposal_id": proposal.ID,
		"reason":      gateErr.Code,
		"detail":      gateErr.Detail,
	}); err != nil {
		return fmt.Errorf("taugate: record rejection event: %w (gate error: %v)", err, gateErr)
	}
	return gateErr
}

func joinErrors(details []string) string {
	out := ""
	for i, e := range details {
		if i > 0 {
			out += "; "
		}
		out += e
	}
	return out
}

// Log exposes the underlying event log for auditing/export.
func (k *Kernel) Log() *eventlog.Log { return k.log }

// Chain exposes the underlying receipt chain for auditing/export.
func (k *Kernel) Chain() *receipt.Chain { return k.chain }

// Keystore exposes the underlying keystore.
func (k *Kernel) Keystore() *keystore.Keystore { return k.keystore }

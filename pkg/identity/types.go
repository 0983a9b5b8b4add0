// Package identity provides an optional JWT bearer-token layer wrapping
// an ActorId for HTTP-facing callers of the kernel. The kernel itself
// never requires tokens — mandates are the unit of authority — but a
// service exposing propose/commit over HTTP needs a way to authenticate
// which actor is calling.
package identity

import "github.com/taugate/kernel/pkg/taugate/types"

// PrincipalType mirrors the actor roles the kernel recognizes.
type PrincipalType string

const (
	PrincipalUser     PrincipalType = "USER"
	PrincipalAgent    PrincipalType = "AGENT"
	PrincipalProvider PrincipalType = "PROVIDER"
	PrincipalAdapter  PrincipalType = "ADAPTER"
)

// Principal represents any entity that can be authenticated and mapped
// onto a kernel ActorId.
type Principal interface {
	ActorID() types.ActorId
	Type() PrincipalType
}

// AgentPrincipal represents an agent principal delegated by a user.
type AgentPrincipal struct {
	Agent       types.ActorId
	DelegatorID string
	Scopes      []string
}

func (a *AgentPrincipal) ActorID() types.ActorId { return a.Agent }
func (a *AgentPrincipal) Type() PrincipalType     { return PrincipalAgent }

// UserPrincipal represents a human user principal.
type UserPrincipal struct {
	User types.ActorId
}

func (u *UserPrincipal) ActorID() types.ActorId { return u.User }
func (u *UserPrincipal) Type() PrincipalType     { return PrincipalUser }

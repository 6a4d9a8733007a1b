package pathctx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/code2vec/uast"
)

// Token policy names accepted by TokenPolicy.
const (
	PolicyInternalType = "internal_type"
	PolicyRoles        = "roles"
	PolicyToken        = "token"
)

// KindToken renders a node by its syntactic kind.
func KindToken(n *uast.Node) string {
	return n.Kind
}

// RolesToken renders a node by its sorted roles joined with " | ".
func RolesToken(n *uast.Node) string {
	roles := append([]string(nil), n.Roles...)
	sort.Strings(roles)
	return strings.Join(roles, " | ")
}

// LeafText renders a node by its source token.
func LeafText(n *uast.Node) string {
	return n.Token
}

// NoopKinds returns a filter matching nodes whose kind is one of kinds.
func NoopKinds(kinds ...string) NoopFilter {
	set := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return func(n *uast.Node) bool {
		_, ok := set[n.Kind]
		return ok
	}
}

// TokenPolicy resolves a policy name to its TokenFunc.
func TokenPolicy(name string) (TokenFunc, error) {
	switch name {
	case PolicyInternalType:
		return KindToken, nil
	case PolicyRoles:
		return RolesToken, nil
	case PolicyToken:
		return LeafText, nil
	default:
		return nil, fmt.Errorf("unknown token policy %q: %w", name, ErrValidation)
	}
}

package authz

const (
	PolicyVersion      = "2012-10-17"
	InvokeAction       = "execute-api:Invoke"
	AnonymousPrincipal = "anonymous"

	ContextUserID = "userId"
	ContextEmail  = "email"
)

type Effect string

const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

// Decision is the authorizer's verdict for one request. Context is non-empty
// only when Effect is Allow.
type Decision struct {
	Effect      Effect
	PrincipalID string
	Resource    string
	Context     map[string]string
}

func (d Decision) Allowed() bool {
	return d.Effect == EffectAllow
}

type Statement struct {
	Effect   Effect
	Action   []string
	Resource []string
}

type PolicyDocument struct {
	Version   string
	Statement []Statement
}

// Policy renders the decision as a single-statement IAM-style policy.
func (d Decision) Policy() PolicyDocument {
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []Statement{{
			Effect:   d.Effect,
			Action:   []string{InvokeAction},
			Resource: []string{d.Resource},
		}},
	}
}

func allow(userID, email, resource string) Decision {
	return Decision{
		Effect:      EffectAllow,
		PrincipalID: userID,
		Resource:    resource,
		Context: map[string]string{
			ContextUserID: userID,
			ContextEmail:  email,
		},
	}
}

func deny(resource string) Decision {
	return Decision{
		Effect:      EffectDeny,
		PrincipalID: AnonymousPrincipal,
		Resource:    resource,
		Context:     map[string]string{},
	}
}

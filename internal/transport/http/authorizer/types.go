package authorizer

// AuthorizeRequest is the body of POST /authorize.
type AuthorizeRequest struct {
	AuthorizationToken string            `json:"authorizationToken"`
	MethodArn          string            `json:"methodArn"`
	HTTPMethod         string            `json:"httpMethod"`
	Headers            map[string]string `json:"headers,omitempty"`
}

type Statement struct {
	Effect   string   `json:"effect"`
	Action   []string `json:"action"`
	Resource []string `json:"resource"`
}

type PolicyDocument struct {
	Version   string      `json:"version"`
	Statement []Statement `json:"statement"`
}

type AuthorizeResponse struct {
	PrincipalID    string            `json:"principalId"`
	PolicyDocument PolicyDocument    `json:"policyDocument"`
	Context        map[string]string `json:"context"`
}

// TokenEvent is the custom authorizer event delivered by the hosting platform.
type TokenEvent struct {
	Type               string            `json:"type"`
	AuthorizationToken string            `json:"authorizationToken"`
	MethodArn          string            `json:"methodArn"`
	HTTPMethod         string            `json:"httpMethod"`
	Headers            map[string]string `json:"headers"`
}

type platformStatement struct {
	Action   []string `json:"Action"`
	Effect   string   `json:"Effect"`
	Resource []string `json:"Resource"`
}

type platformPolicy struct {
	Version   string              `json:"Version"`
	Statement []platformStatement `json:"Statement"`
}

type platformResponse struct {
	PrincipalID    string            `json:"principalId"`
	PolicyDocument platformPolicy    `json:"policyDocument"`
	Context        map[string]string `json:"context"`
}

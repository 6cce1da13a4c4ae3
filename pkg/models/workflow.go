package models

// Workflow is an n8n workflow definition as returned by the n8n REST API.
// Node IDs and credential references are never altered by automated edits.
type Workflow struct {
	ID          string                `json:"id,omitempty"`
	Name        string                `json:"name"`
	Active      bool                  `json:"active"`
	Nodes       []Node                `json:"nodes"`
	Connections map[string]Connection `json:"connections"`
	Settings    map[string]any        `json:"settings,omitempty"`
	CreatedAt   string                `json:"createdAt,omitempty"`
	UpdatedAt   string                `json:"updatedAt,omitempty"`
}

// Node is a single step in a workflow graph.
type Node struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Type        string                   `json:"type"`
	TypeVersion float64                  `json:"typeVersion"`
	Position    [2]float64               `json:"position"`
	Parameters  map[string]any           `json:"parameters"`
	Credentials map[string]CredentialRef `json:"credentials,omitempty"`
}

// CredentialRef points a node at a stored credential by id and name.
type CredentialRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Connection holds the output fan-out of a source node. Targets are
// referenced by node name, not id; n8n resolves them at execution time.
type Connection struct {
	Main [][]ConnectionTarget `json:"main"`
}

// ConnectionTarget is one wire from a source output to a node input.
type ConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

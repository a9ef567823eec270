package labelgraph

import (
	"encoding/json"
	"fmt"
)

// NodeType is the kind of entity a node represents.
type NodeType string

const (
	TypeLabel        NodeType = "label"
	TypeSublabel     NodeType = "sublabel"
	TypeArtist       NodeType = "artist"
	TypeSong         NodeType = "song"
	TypeCollaborator NodeType = "collaborator"
)

// NodeTypes lists every node type in hierarchy order.
var NodeTypes = []NodeType{TypeLabel, TypeSublabel, TypeArtist, TypeSong, TypeCollaborator}

// Diagnostic reasons recorded on malformed entries.
const (
	ReasonMissingName     = "Missing artistName and name"
	ReasonMissingSongName = "Missing songName"
)

// Node is a graph vertex. The concrete types are [LabelNode], [ArtistNode],
// [SongNode] and [CollaboratorNode]; each marshals to a flat JSON object that
// starts with "id" and "type".
type Node interface {
	NodeID() string
	NodeType() NodeType
	// LabelContext returns the owning label name, or "" when the node
	// carries none.
	LabelContext() string
}

// LabelNode is a label or sublabel. Label holds the label name itself for
// label nodes and the parent label for sublabel nodes.
type LabelNode struct {
	ID    string   `json:"id"`
	Type  NodeType `json:"type"`
	Label string   `json:"label"`
}

func (n LabelNode) NodeID() string       { return n.ID }
func (n LabelNode) NodeType() NodeType   { return n.Type }
func (n LabelNode) LabelContext() string { return n.Label }

// ArtistNode is an artist signed to a label or sublabel.
//
// Raw fields are copied verbatim from the source record. A nil value means the
// field was absent and is written as null.
type ArtistNode struct {
	ID             string          `json:"id"`
	Type           NodeType        `json:"type"`
	Name           string          `json:"name"`
	PageURL        json.RawMessage `json:"pageURL"`
	Instagram      json.RawMessage `json:"Instagram"`
	TikTok         json.RawMessage `json:"TikTok"`
	YouTube        json.RawMessage `json:"YouTube"`
	Twitter        json.RawMessage `json:"Twitter"`
	Facebook       json.RawMessage `json:"Facebook"`
	TotalFollowers json.RawMessage `json:"totalFollowers"`
	Genres         json.RawMessage `json:"genres"`
	Label          *string         `json:"label"`
	Sublabel       *string         `json:"sublabel"`
}

func (n ArtistNode) NodeID() string     { return n.ID }
func (n ArtistNode) NodeType() NodeType { return n.Type }

func (n ArtistNode) LabelContext() string {
	if n.Label == nil {
		return ""
	}
	return *n.Label
}

// SongNode is one of an artist's top tracks.
type SongNode struct {
	ID               string          `json:"id"`
	Type             NodeType        `json:"type"`
	SongName         string          `json:"songName"`
	Popularity       json.RawMessage `json:"popularity"`
	Duration         json.RawMessage `json:"duration"`
	Explicit         json.RawMessage `json:"explicit"`
	AlbumName        json.RawMessage `json:"albumName"`
	AlbumReleaseDate json.RawMessage `json:"albumReleaseDate"`
	AlbumTotalTracks json.RawMessage `json:"albumTotalTracks"`
}

func (n SongNode) NodeID() string       { return n.ID }
func (n SongNode) NodeType() NodeType   { return n.Type }
func (n SongNode) LabelContext() string { return "" }

// CollaboratorNode is a featured artist on a song.
type CollaboratorNode struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`
	Name string   `json:"name"`
}

func (n CollaboratorNode) NodeID() string       { return n.ID }
func (n CollaboratorNode) NodeType() NodeType   { return n.Type }
func (n CollaboratorNode) LabelContext() string { return "" }

// Link is a directed edge. Label names the owning record label and is omitted
// when empty.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Graph is the node-link serialization: nodes in first-seen order, links in
// the order they were added.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Node returns the node with the given ID.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.NodeID() == id {
			return n, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes nodes into their concrete types based on "type".
func (g *Graph) UnmarshalJSON(data []byte) error {
	var raw struct {
		Nodes []json.RawMessage `json:"nodes"`
		Links []Link            `json:"links"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	nodes := make([]Node, 0, len(raw.Nodes))
	for i, rn := range raw.Nodes {
		n, err := decodeNode(rn)
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		nodes = append(nodes, n)
	}
	links := raw.Links
	if links == nil {
		links = []Link{}
	}

	g.Nodes = nodes
	g.Links = links
	return nil
}

func decodeNode(data json.RawMessage) (Node, error) {
	var head struct {
		Type NodeType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case TypeLabel, TypeSublabel:
		var n LabelNode
		err := json.Unmarshal(data, &n)
		return n, err
	case TypeArtist:
		var n ArtistNode
		err := json.Unmarshal(data, &n)
		return n, err
	case TypeSong:
		var n SongNode
		err := json.Unmarshal(data, &n)
		return n, err
	case TypeCollaborator:
		var n CollaboratorNode
		err := json.Unmarshal(data, &n)
		return n, err
	default:
		return nil, fmt.Errorf("unknown node type %q", head.Type)
	}
}

// MalformedEntry records an input fragment that failed a required-field check.
// Artist is set only for track-level failures. Entry is the offending fragment
// exactly as it appeared in the input.
type MalformedEntry struct {
	Reason string          `json:"reason"`
	Artist string          `json:"artist,omitempty"`
	Entry  json.RawMessage `json:"entry"`
}

// Result is the output of a single conversion.
type Result struct {
	Graph     Graph            `json:"graph"`
	Malformed []MalformedEntry `json:"malformed"`
}

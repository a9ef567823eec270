// Package labelgraph converts nested record-label documents into node-link graphs.
//
// # Overview
//
// The input is a JSON object keyed by label name. Each label either lists its
// artists directly or groups them under sublabels:
//
//	{
//	  "Warner Music Group": {
//	    "Atlantic": [{"artistName": "X", "topTracks": [...]}]
//	  },
//	  "Other Labels": [{"name": "Y"}]
//	}
//
// [Build] walks that structure once and produces a flat [Graph] made of typed
// nodes (label, sublabel, artist, song, collaborator) and directed [Link]s, the
// interchange format used by force-directed graph viewers:
//
//	{
//	  "nodes": [{"id": "Other Labels", "type": "label", "label": "Other Labels"}, ...],
//	  "links": [{"source": "Other Labels", "target": "Y", "label": "Other Labels"}, ...]
//	}
//
// # Node Identity
//
// Nodes are deduplicated by ID and the first occurrence wins:
//
//   - label, sublabel: the key in the document
//   - artist: the artistId field, or the display name when absent
//   - song: "<artist id>::<song name>"
//   - collaborator: the collaborator name
//
// Identity is name-only. A sublabel (or artist) that appears under two labels
// collapses into a single node carrying the attributes of its first
// appearance.
//
// # Malformed Entries
//
// Artist records without a usable name and tracks without a song name are not
// errors. They are recorded as [MalformedEntry] values on the [Result] and the
// affected artist or track is skipped. Label contents that are neither a list
// nor an object are ignored without a diagnostic.
//
// # Concurrency
//
// Build keeps all of its state in a per-call value, so separate documents can
// be converted from separate goroutines. A [Document] is read-only after
// [Decode] and may be shared.
package labelgraph

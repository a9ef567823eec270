package labelgraph

import "encoding/json"

// Build converts a document into a node-link graph. It never fails: records
// that cannot be represented are reported in Result.Malformed and skipped.
//
// Labels are visited in document order. A label whose contents are a list is
// treated as holding artists directly; an object is treated as a mapping of
// sublabel to artist list. Any other value is ignored.
func Build(doc *Document) *Result {
	b := newBuilder()
	if doc != nil {
		for pair := doc.labels.Oldest(); pair != nil; pair = pair.Next() {
			b.label(pair.Key, pair.Value)
		}
	}
	return &Result{
		Graph: Graph{
			Nodes: b.nodes.Nodes(),
			Links: b.links.Links(),
		},
		Malformed: b.malformed.Entries(),
	}
}

// builder carries the accumulators for one conversion.
type builder struct {
	nodes     *NodeRegistry
	links     *EdgeCollector
	malformed *MalformedLog
}

func newBuilder() *builder {
	return &builder{
		nodes:     NewNodeRegistry(),
		links:     NewEdgeCollector(),
		malformed: NewMalformedLog(),
	}
}

func (b *builder) label(name string, contents json.RawMessage) {
	b.nodes.Add(LabelNode{ID: name, Type: TypeLabel, Label: name})

	switch shape(contents) {
	case '[':
		for _, artist := range list(contents) {
			b.artist(artist, name, name, nil)
		}
	case '{':
		sublabels, err := decodeObject(contents)
		if err != nil {
			return
		}
		for pair := sublabels.Oldest(); pair != nil; pair = pair.Next() {
			sub := pair.Key
			b.nodes.Add(LabelNode{ID: sub, Type: TypeSublabel, Label: name})
			b.links.Add(name, sub, name)
			for _, artist := range list(pair.Value) {
				b.artist(artist, sub, name, &sub)
			}
		}
	}
}

// artist adds one artist record with its songs and collaborators. parentID is
// the label or sublabel the artist hangs off; sublabel is nil for artists
// listed directly under a label.
func (b *builder) artist(raw json.RawMessage, parentID, label string, sublabel *string) {
	rec := record(raw)

	name := text(rec, "artistName")
	if name == "" {
		name = text(rec, "name")
	}
	if name == "" {
		b.malformed.Add(ReasonMissingName, "", raw)
		return
	}

	id, ok := identifier(rec, "artistId")
	if !ok {
		id = name
	}

	genres := rec["genres"]
	if genres == nil {
		genres = json.RawMessage("[]")
	}

	b.nodes.Add(ArtistNode{
		ID:             id,
		Type:           TypeArtist,
		Name:           name,
		PageURL:        rec["artistPageURL"],
		Instagram:      rec["Instagram"],
		TikTok:         rec["TikTok"],
		YouTube:        rec["YouTube"],
		Twitter:        rec["Twitter"],
		Facebook:       rec["Facebook"],
		TotalFollowers: rec["totalFollowers"],
		Genres:         genres,
		Label:          &label,
		Sublabel:       sublabel,
	})
	b.links.Add(parentID, id, label)

	for _, track := range list(rec["topTracks"]) {
		b.track(track, id, name, label)
	}
}

func (b *builder) track(raw json.RawMessage, artistID, artistName, label string) {
	t := record(raw)
	song := record(t["song"])
	album := record(t["album"])

	songName := text(song, "songName")
	if songName == "" {
		b.malformed.Add(ReasonMissingSongName, artistName, raw)
		return
	}

	songID := SongID(artistID, songName)
	b.nodes.Add(SongNode{
		ID:               songID,
		Type:             TypeSong,
		SongName:         songName,
		Popularity:       song["songPopularity"],
		Duration:         song["songDuration"],
		Explicit:         song["songExplicit"],
		AlbumName:        album["albumName"],
		AlbumReleaseDate: album["albumReleaseDate"],
		AlbumTotalTracks: album["albumTotalTracks"],
	})
	b.links.Add(artistID, songID, label)

	for _, c := range list(song["songCollaborators"]) {
		var collaborator string
		if err := json.Unmarshal(c, &collaborator); err != nil {
			continue
		}
		if collaborator == artistName {
			continue
		}
		b.nodes.Add(CollaboratorNode{ID: collaborator, Type: TypeCollaborator, Name: collaborator})
		b.links.Add(songID, collaborator, label)
	}
}

// SongID returns the node ID of a song owned by the given artist.
func SongID(artistID, songName string) string {
	return artistID + "::" + songName
}

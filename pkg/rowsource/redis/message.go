package redis

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/gridview/pkg/rows"
)

// message is the JSON form of a change on the pub/sub channel:
//
//	{"kind":"inserted","index":3,"parent":"<id>"}
type message struct {
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	Parent string `json:"parent,omitempty"`
}

func encodeChange(ch rows.Change) string {
	data, _ := json.Marshal(message{Kind: ch.Kind.String(), Index: ch.Index, Parent: ch.Parent})
	return string(data)
}

func decodeChange(payload string) (rows.Change, error) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return rows.Change{}, err
	}
	ch := rows.Change{Index: m.Index, Parent: m.Parent}
	switch m.Kind {
	case "inserted":
		ch.Kind = rows.Inserted
	case "removed":
		ch.Kind = rows.Removed
	case "reset":
		ch.Kind = rows.Reset
	default:
		return rows.Change{}, fmt.Errorf("unknown change kind %q", m.Kind)
	}
	if ch.Index < 0 {
		return rows.Change{}, fmt.Errorf("negative index %d", ch.Index)
	}
	return ch, nil
}

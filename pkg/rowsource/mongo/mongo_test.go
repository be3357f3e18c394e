package mongo

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/gridview/pkg/rows"
	"github.com/matzehuels/gridview/pkg/rowsource"
)

func TestChildrenOf(t *testing.T) {
	tests := []struct {
		parent string
		want   bson.D
	}{
		{"", bson.D{{Key: "parent", Value: nil}}},
		{"r1", bson.D{{Key: "parent", Value: "r1"}}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, childrenOf(tt.parent)); diff != "" {
			t.Errorf("childrenOf(%q) (-want +got):\n%s", tt.parent, diff)
		}
	}
}

func TestPageOptions(t *testing.T) {
	opts := pageOptions(128, 64)
	if opts.Skip == nil || *opts.Skip != 128 {
		t.Errorf("skip = %v, want 128", opts.Skip)
	}
	if opts.Limit == nil || *opts.Limit != 64 {
		t.Errorf("limit = %v, want 64", opts.Limit)
	}
	if diff := cmp.Diff(byOrder, opts.Sort); diff != "" {
		t.Errorf("sort (-want +got):\n%s", diff)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := document{ID: "r1", Order: 2, Values: map[string]any{"name": "alpha"}}
	data, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["parent"]; ok {
		t.Error("top-level document should not carry a parent field")
	}

	var back document
	if err := bson.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	want := rows.Row{ID: "r1", Values: map[string]any{"name": "alpha"}}
	if diff := cmp.Diff(want, back.row()); diff != "" {
		t.Errorf("row (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if rowsource.IsRetryable(classify(errors.New("duplicate key"))) {
		t.Error("plain errors should not be retryable")
	}
}

package models

import "testing"

func TestWithISRCDoesNotMutateReceiver(t *testing.T) {
	original := SourceTrack{ID: "1", Title: "Song", Artist: "Artist"}
	enriched := original.WithISRC("USABC1234567")

	if original.ISRC != "" {
		t.Errorf("original.ISRC = %q, want empty", original.ISRC)
	}
	if enriched.ISRC != "USABC1234567" {
		t.Errorf("enriched.ISRC = %q, want USABC1234567", enriched.ISRC)
	}
	if enriched.ID != original.ID || enriched.Title != original.Title {
		t.Error("WithISRC changed unrelated fields")
	}
}

func TestMatchOutcomeConstructors(t *testing.T) {
	src := SourceTrack{ID: "1", Title: "Song"}
	cat := CatalogTrack{ID: "c1", Title: "Song"}

	matched := Matched(src, cat, MatchMethodExact, 1.0)
	if !matched.Found() {
		t.Error("Matched outcome reports Found() = false")
	}
	if matched.Track.ID != "c1" {
		t.Errorf("Track.ID = %q, want c1", matched.Track.ID)
	}
	if matched.Method != MatchMethodExact || matched.Confidence != 1.0 {
		t.Errorf("got method=%q confidence=%v", matched.Method, matched.Confidence)
	}

	miss := NotFound(src, "best match below threshold")
	if miss.Found() {
		t.Error("NotFound outcome reports Found() = true")
	}
	if miss.Track != nil {
		t.Error("NotFound outcome carries a track")
	}
	if miss.Reason != "best match below threshold" {
		t.Errorf("Reason = %q", miss.Reason)
	}
}

func TestDedupBySourceID(t *testing.T) {
	tests := []struct {
		name  string
		input []SourceTrack
		want  []string
	}{
		{
			name:  "no duplicates",
			input: []SourceTrack{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "first occurrence wins",
			input: []SourceTrack{{ID: "a", Title: "first"}, {ID: "b"}, {ID: "a", Title: "second"}},
			want:  []string{"a", "b"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  []string{},
		},
		{
			name:  "all duplicates",
			input: []SourceTrack{{ID: "x"}, {ID: "x"}, {ID: "x"}},
			want:  []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DedupBySourceID(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tracks, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestDedupKeepsFirstOccurrenceFields(t *testing.T) {
	input := []SourceTrack{
		{ID: "a", Title: "original"},
		{ID: "a", Title: "duplicate"},
	}

	got := DedupBySourceID(input)
	if got[0].Title != "original" {
		t.Errorf("Title = %q, want %q", got[0].Title, "original")
	}
}

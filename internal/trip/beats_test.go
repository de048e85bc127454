package trip

import "testing"

func TestBuildStoryBeatLookup(t *testing.T) {
	beats := []StoryBeat{
		{ID: "b1", Text: "First"},
		{ID: "", Text: "No ID, dropped"},
		{ID: "b2", Text: "Second", Starred: true},
	}

	lookup := BuildStoryBeatLookup(beats)

	if len(lookup) != 2 {
		t.Fatalf("lookup has %d entries, want 2", len(lookup))
	}
	if lookup["b1"].Text != "First" {
		t.Errorf("b1 = %+v", lookup["b1"])
	}
	if !lookup["b2"].Starred {
		t.Errorf("b2 starred flag lost")
	}
	if _, ok := lookup[""]; ok {
		t.Error("beat without ID must be dropped")
	}
}

func TestBuildStoryBeatLookup_Empty(t *testing.T) {
	if got := BuildStoryBeatLookup(nil); len(got) != 0 {
		t.Errorf("expected empty lookup, got %d entries", len(got))
	}
}

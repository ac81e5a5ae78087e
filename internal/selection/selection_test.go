package selection

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGroups builds three documents holding 2, 3 and 1 pages
func testGroups() []Group {
	return []Group{
		{ID: "doc1", Items: []Item{{ID: "p1"}, {ID: "p2"}}},
		{ID: "doc2", Items: []Item{{ID: "p3"}, {ID: "p4"}, {ID: "p5"}}},
		{ID: "doc3", Items: []Item{{ID: "p6"}}},
	}
}

func ids(flat []Item) []string {
	out := make([]string, len(flat))
	for i, item := range flat {
		out[i] = item.ID
	}
	return out
}

func TestFlatten(t *testing.T) {
	flat := Flatten(testGroups())

	want := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	if diff := cmp.Diff(want, ids(flat)); diff != "" {
		t.Errorf("Flatten() order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "doc1", flat[0].GroupID)
	assert.Equal(t, "doc2", flat[3].GroupID)
	assert.Equal(t, "doc3", flat[5].GroupID)

	assert.Empty(t, Flatten(nil))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "", want: ModeNone},
		{input: "none", want: ModeNone},
		{input: "Single", want: ModeSingle},
		{input: "group", want: ModeGroup},
		{input: "everything", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRange_BoundarySymmetric(t *testing.T) {
	flat := Flatten(testGroups())

	for i := range flat {
		for j := i; j < len(flat); j++ {
			name := fmt.Sprintf("%s..%s", flat[i].ID, flat[j].ID)
			t.Run(name, func(t *testing.T) {
				want := ids(flat[i : j+1])

				forward := Range(flat, []string{flat[i].ID}, flat[j].ID)
				backward := Range(flat, []string{flat[j].ID}, flat[i].ID)

				if diff := cmp.Diff(want, forward); diff != "" {
					t.Errorf("forward range mismatch (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff(want, backward); diff != "" {
					t.Errorf("backward range mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestRange_MissingBoundaries(t *testing.T) {
	flat := Flatten(testGroups())

	assert.Nil(t, Range(flat, []string{"gone"}, "p3"))
	assert.Nil(t, Range(flat, []string{"p1"}, "gone"))
	assert.Nil(t, Range(flat, nil, "p3"))
	assert.Nil(t, Range(nil, []string{"p1"}, "p1"))
}

func TestRange_MultipleAnchorsStayContiguous(t *testing.T) {
	flat := Flatten(testGroups())

	got := Range(flat, []string{"p2", "p5"}, "p3")
	assert.Equal(t, []string{"p2", "p3", "p4", "p5"}, got)

	got = Range(flat, []string{"p2", "p3"}, "p6")
	assert.Equal(t, []string{"p2", "p3", "p4", "p5", "p6"}, got)
}

func TestToggle_Modes(t *testing.T) {
	base := NewSet("p1", "p2")

	t.Run("none replaces", func(t *testing.T) {
		got := Toggle(base, []string{"p4"}, ModeNone)
		assert.Equal(t, []string{"p4"}, got.Sorted())
	})

	t.Run("single xor", func(t *testing.T) {
		got := Toggle(base, []string{"p2", "p3"}, ModeSingle)
		assert.Equal(t, []string{"p1", "p3"}, got.Sorted())
	})

	t.Run("single twice restores", func(t *testing.T) {
		once := Toggle(base, []string{"p5"}, ModeSingle)
		twice := Toggle(once, []string{"p5"}, ModeSingle)
		assert.True(t, base.Equal(twice))

		once = Toggle(base, []string{"p1"}, ModeSingle)
		twice = Toggle(once, []string{"p1"}, ModeSingle)
		assert.True(t, base.Equal(twice))
	})

	t.Run("group fully selected deselects", func(t *testing.T) {
		got := Toggle(base, []string{"p1", "p2"}, ModeGroup)
		assert.Empty(t, got)
	})

	t.Run("group partially selected selects all", func(t *testing.T) {
		got := Toggle(base, []string{"p2", "p3", "p4"}, ModeGroup)
		assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, got.Sorted())
	})

	t.Run("input untouched", func(t *testing.T) {
		assert.Equal(t, []string{"p1", "p2"}, base.Sorted())
	})
}

func TestState_RangeFromImplicitAnchor(t *testing.T) {
	flat := Flatten(testGroups())
	s := NewState()

	s.Toggle([]string{"p2"}, ModeNone)
	require.True(t, s.HasAnchor(flat))

	changed := s.SelectRange(flat, "p5", false)
	assert.True(t, changed)
	assert.Equal(t, []string{"p2", "p3", "p4", "p5"}, s.Selected().Ordered(flat))
	assert.Equal(t, []string{"p2"}, s.Anchors())
}

func TestState_AnchorPersists(t *testing.T) {
	flat := Flatten(testGroups())
	s := NewState()

	s.Toggle([]string{"p3"}, ModeNone)
	s.SelectRange(flat, "p6", false)
	s.SelectRange(flat, "p1", false)

	assert.Equal(t, []string{"p1", "p2", "p3"}, s.Selected().Ordered(flat))
	assert.Equal(t, []string{"p3"}, s.Anchors())
	assert.True(t, s.IsSelected("p3"), "anchor must stay selected")
}

func TestState_ToggleResetsAnchor(t *testing.T) {
	flat := Flatten(testGroups())
	s := NewState()

	s.Toggle([]string{"p1"}, ModeNone)
	s.SelectRange(flat, "p3", false)
	s.Toggle([]string{"p6"}, ModeSingle)

	assert.Empty(t, s.Anchors())
	s.SelectRange(flat, "p4", false)
	assert.Equal(t, []string{"p4", "p5", "p6"}, s.Selected().Ordered(flat))
}

func TestState_AppendRange(t *testing.T) {
	flat := Flatten(testGroups())
	s := NewState()

	s.Toggle([]string{"p1"}, ModeNone)
	s.SetAnchor("p5")
	s.SelectRange(flat, "p6", true)

	assert.Equal(t, []string{"p1", "p5", "p6"}, s.Selected().Ordered(flat))
}

func TestState_NoAnchorIsNoop(t *testing.T) {
	flat := Flatten(testGroups())
	s := NewState()

	assert.False(t, s.HasAnchor(flat))
	assert.False(t, s.SelectRange(flat, "p3", false))
	assert.Equal(t, 0, s.Len())
}

func TestState_RemovedAnchorIsNoop(t *testing.T) {
	groups := testGroups()
	flat := Flatten(groups)
	s := NewState()

	s.Toggle([]string{"p1"}, ModeNone)
	s.SetAnchor("p3")
	s.SelectRange(flat, "p4", false)
	require.Equal(t, []string{"p3", "p4"}, s.Selected().Ordered(flat))

	// doc2 filtered out of the view
	filtered := Flatten([]Group{groups[0], groups[2]})
	assert.False(t, s.SelectRange(filtered, "p6", false))
	assert.Equal(t, []string{"p3", "p4"}, s.Selected().Sorted())

	s.Prune(filtered)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.HasAnchor(filtered))
	assert.False(t, s.SelectRange(filtered, "p6", false))
}

func TestState_EmptySequenceClears(t *testing.T) {
	flat := Flatten(testGroups())
	s := NewState()

	s.Toggle([]string{"p1"}, ModeNone)
	s.SelectRange(flat, "p2", false)

	assert.True(t, s.SelectRange(nil, "p2", false))
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Anchors())
}

func TestState_CloneIsIndependent(t *testing.T) {
	s := NewState()
	s.Toggle([]string{"p1", "p2"}, ModeNone)

	c := s.Clone()
	c.Toggle([]string{"p2"}, ModeSingle)

	assert.Equal(t, []string{"p1", "p2"}, s.Selected().Sorted())
	assert.Equal(t, []string{"p1"}, c.Selected().Sorted())
}

package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/polaroid/pkg/photo"
)

func testAlbum(t *testing.T, n int) *photo.Album {
	t.Helper()
	a := photo.NewAlbum("Trip")
	for i := 0; i < n; i++ {
		if _, err := a.Add(string(rune('a'+i)) + ".jpg"); err != nil {
			t.Fatal(err)
		}
	}
	return a
}

func press(m EditorModel, keys ...tea.KeyMsg) EditorModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(EditorModel)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyBack  = tea.KeyMsg{Type: tea.KeyBackspace}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
)

func TestEditorNavigation(t *testing.T) {
	m := NewEditorModel(testAlbum(t, 3), nil)

	m = press(m, keyUp)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}
	m = press(m, keyDown, keyDown, keyDown)
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", m.Cursor)
	}
	if m.Dirty {
		t.Error("navigation should not mark the album dirty")
	}
}

func TestEditorCaption(t *testing.T) {
	m := NewEditorModel(testAlbum(t, 2), nil)

	m = press(m, keyDown, runes("c"))
	if !m.Editing {
		t.Fatal("c should start caption editing")
	}
	m = press(m, runes("Beach"), tea.KeyMsg{Type: tea.KeySpace}, runes("dayz"), keyBack, keyEnter)
	if m.Editing {
		t.Error("enter should finish editing")
	}
	if got := m.Album.Photos[1].Caption; got != "Beach day" {
		t.Errorf("Caption = %q, want %q", got, "Beach day")
	}
	if !m.Dirty {
		t.Error("caption should mark the album dirty")
	}

	m = press(m, keyEnter, runes("discard"), keyEsc)
	if got := m.Album.Photos[1].Caption; got != "Beach day" {
		t.Errorf("esc should keep the old caption, got %q", got)
	}
}

func TestEditorFraming(t *testing.T) {
	m := NewEditorModel(testAlbum(t, 1), nil)

	m = press(m, runes("+"), runes("+"))
	if got := m.Album.Photos[0].Scale; got < 1.19 || got > 1.21 {
		t.Errorf("Scale = %v, want 1.2", got)
	}
	m = press(m, keyLeft)
	if got := m.Album.Photos[0].PosX; got >= photo.DefaultPos {
		t.Errorf("PosX = %v, want < %v after panning left", got, photo.DefaultPos)
	}
	m = press(m, runes("0"))
	p := m.Album.Photos[0]
	if p.Scale != photo.DefaultScale || p.PosX != photo.DefaultPos || p.PosY != photo.DefaultPos {
		t.Errorf("reset framing = %v @ %v,%v", p.Scale, p.PosX, p.PosY)
	}
}

func TestEditorFilterMoveDelete(t *testing.T) {
	m := NewEditorModel(testAlbum(t, 3), nil)
	first := m.Album.Photos[0].ID

	m = press(m, runes("f"))
	if got := photo.PresetName(m.Album.Photos[0].Filter); got != "vintage" {
		t.Errorf("filter after f = %q, want vintage", got)
	}
	m = press(m, runes("F"))
	for i, p := range m.Album.Photos {
		if photo.PresetName(p.Filter) != "vintage" {
			t.Errorf("photo %d filter = %q, want vintage", i, p.Filter)
		}
	}

	m = press(m, runes("J"))
	if m.Album.Photos[1].ID != first || m.Cursor != 1 {
		t.Errorf("J should move the photo down with the cursor")
	}

	m = press(m, keyDown, runes("x"))
	if m.Album.Len() != 2 || m.Cursor != 1 {
		t.Errorf("after delete: len %d cursor %d, want 2 and 1", m.Album.Len(), m.Cursor)
	}
}

func TestEditorSaveAndQuit(t *testing.T) {
	saves := 0
	save := func(*photo.Album) error {
		saves++
		return nil
	}
	m := NewEditorModel(testAlbum(t, 1), save)

	m = press(m, runes("+"))
	next, cmd := m.Update(runes("q"))
	m = next.(EditorModel)
	if cmd != nil || !m.confirm {
		t.Fatal("q with unsaved changes should ask for confirmation")
	}

	m = press(m, runes("s"))
	if saves != 1 || m.Dirty || !m.Saved {
		t.Errorf("save: saves=%d dirty=%v saved=%v", saves, m.Dirty, m.Saved)
	}
	if _, cmd := m.Update(runes("q")); cmd == nil {
		t.Error("q after saving should quit")
	}

	failing := NewEditorModel(testAlbum(t, 1), func(*photo.Album) error { return errors.New("disk full") })
	failing = press(failing, runes("+"), runes("s"))
	if !failing.Dirty || !strings.Contains(failing.View(), "disk full") {
		t.Error("a failed save should keep the album dirty and show the error")
	}
}

func TestEditorView(t *testing.T) {
	m := NewEditorModel(testAlbum(t, 2), nil)
	view := m.View()
	for _, want := range []string{"Trip", "a.jpg", "b.jpg", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	empty := NewEditorModel(photo.NewAlbum("Empty"), nil)
	if !strings.Contains(empty.View(), "no photos") {
		t.Error("empty album view should say there are no photos")
	}
	empty = press(empty, keyDown, runes("x"), runes("+"))
	if empty.Dirty {
		t.Error("keys on an empty album should do nothing")
	}
}

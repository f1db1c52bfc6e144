package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polaroid/pkg/manifest"
	"github.com/matzehuels/polaroid/pkg/photo"
)

// Editor styles
var (
	editorHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	editorStatusStyle = lipgloss.NewStyle().Foreground(colorGreen)
	editorErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	editorInputStyle  = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
)

// Editor key steps.
const (
	zoomStep = 0.1
	panStep  = 10.0 // drag pixels per key press
)

// editCommand creates the interactive album editor command.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <album>",
		Short: "Edit an album interactively",
		Long: `Edit an album interactively: select photos, caption them, zoom and pan
their framing, cycle filters, reorder and delete. Press ? for keys.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			album, meta, err := manifest.Read(path)
			if err != nil {
				return err
			}
			save := func(a *photo.Album) error {
				return manifest.Write(path, a, meta)
			}

			m := NewEditorModel(album, save)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("editor: %w", err)
			}
			em, ok := final.(EditorModel)
			switch {
			case !ok:
			case em.Dirty:
				printWarning("Quit with unsaved changes")
			case em.Saved:
				printSuccess("Saved %s", filepath.Base(path))
			}
			return nil
		},
	}
}

// =============================================================================
// EditorModel - Interactive album editing
// =============================================================================

// EditorModel is the bubbletea model for the album editor.
type EditorModel struct {
	Album  *photo.Album
	Cursor int
	Offset int
	Height int
	Dirty  bool // unsaved edits
	Saved  bool // saved at least once

	// Editing is true while a caption is being typed into Input.
	Editing bool
	Input   []rune

	status  string
	err     error
	confirm bool // quit requested with unsaved changes
	save    func(*photo.Album) error
}

// NewEditorModel creates an editor for album. save persists the album.
func NewEditorModel(album *photo.Album, save func(*photo.Album) error) EditorModel {
	return EditorModel{
		Album:  album,
		Height: 15,
		save:   save,
	}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Editing {
			return m.updateCaption(msg)
		}
		return m.updateNormal(msg)
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 3 {
			m.Height = 3
		}
		m.scroll()
	}
	return m, nil
}

func (m EditorModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" {
		m.confirm = false
	}
	m.status, m.err = "", nil

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		if m.Dirty && !m.confirm {
			m.confirm = true
			m.status = "unsaved changes: press q again to discard, s to save"
			return m, nil
		}
		return m, tea.Quit
	case "s", "ctrl+s":
		if err := m.save(m.Album); err != nil {
			m.err = err
			return m, nil
		}
		m.Dirty = false
		m.Saved = true
		m.status = "saved"
		return m, nil
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < m.Album.Len()-1 {
			m.Cursor++
		}
	}

	p, ok := m.current()
	if !ok {
		m.scroll()
		return m, nil
	}

	switch key {
	case "enter", "c":
		m.Editing = true
		m.Input = []rune(p.Caption)
	case "+", "=":
		m.apply(m.Album.Adjust(p.ID, photo.Adjustment{Scale: ptr(p.Normalized().Scale + zoomStep)}))
	case "-":
		m.apply(m.Album.Adjust(p.ID, photo.Adjustment{Scale: ptr(p.Normalized().Scale - zoomStep)}))
	case "left":
		m.apply(m.Album.Nudge(p.ID, panStep, 0))
	case "right":
		m.apply(m.Album.Nudge(p.ID, -panStep, 0))
	case "shift+up":
		m.apply(m.Album.Nudge(p.ID, 0, panStep))
	case "shift+down":
		m.apply(m.Album.Nudge(p.ID, 0, -panStep))
	case "0":
		m.apply(m.Album.Adjust(p.ID, photo.Adjustment{
			Scale: ptr(photo.DefaultScale), PosX: ptr(photo.DefaultPos), PosY: ptr(photo.DefaultPos),
		}))
	case "f":
		m.apply(m.Album.SetFilter(p.ID, photo.NextPreset(p.Filter)))
	case "F":
		if m.apply(m.Album.ApplyFilterToAll(p.Filter)) {
			m.status = fmt.Sprintf("filter %s on all photos", photo.PresetName(p.Filter))
		}
	case "K":
		if m.Cursor > 0 && m.apply(m.Album.Move(p.ID, m.Cursor-1)) {
			m.Cursor--
		}
	case "J":
		if m.Cursor < m.Album.Len()-1 && m.apply(m.Album.Move(p.ID, m.Cursor+1)) {
			m.Cursor++
		}
	case "x", "delete":
		if m.apply(m.Album.Remove(p.ID)) {
			m.status = "removed " + filepath.Base(p.Source)
			if m.Cursor >= m.Album.Len() && m.Cursor > 0 {
				m.Cursor--
			}
		}
	}
	m.scroll()
	return m, nil
}

func (m EditorModel) updateCaption(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.Editing = false
		m.Input = nil
	case tea.KeyEnter:
		m.Editing = false
		if p, ok := m.current(); ok {
			m.apply(m.Album.SetCaption(p.ID, string(m.Input)))
		}
		m.Input = nil
	case tea.KeyBackspace:
		if len(m.Input) > 0 {
			m.Input = m.Input[:len(m.Input)-1]
		}
	case tea.KeySpace:
		m.Input = append(m.Input, ' ')
	case tea.KeyRunes:
		m.Input = append(m.Input, msg.Runes...)
	}
	return m, nil
}

// apply records the outcome of an album edit and reports success.
func (m *EditorModel) apply(err error) bool {
	if err != nil {
		m.err = err
		return false
	}
	m.Dirty = true
	return true
}

func (m EditorModel) current() (photo.Photo, bool) {
	if m.Cursor < 0 || m.Cursor >= m.Album.Len() {
		return photo.Photo{}, false
	}
	return m.Album.Photos[m.Cursor], true
}

// scroll keeps the cursor inside the visible window.
func (m *EditorModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := m.Album.Title
	if m.Dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(editorHelpStyle.Render("↑/↓ select  ⏎ caption  +/- zoom  ←/→ shift+↑/↓ pan  0 reset  f/F filter  J/K move  x delete  s save  q quit"))
	b.WriteString("\n\n")

	if m.Album.Len() == 0 {
		b.WriteString(editorHelpStyle.Render("  no photos: add some with '" + appName + " add'"))
		b.WriteString("\n")
	} else {
		end := min(m.Offset+m.Height, m.Album.Len())
		rows := photoRows(m.Album)[m.Offset:end]
		b.WriteString(renderTable(photoHeaders, rows, m.Cursor-m.Offset))
		b.WriteString("\n")
		b.WriteString(editorHelpStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, m.Album.Len())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.Editing:
		b.WriteString("caption: " + editorInputStyle.Render(string(m.Input)+"▏"))
	case m.err != nil:
		b.WriteString(editorErrorStyle.Render(iconError + " " + m.err.Error()))
	case m.status != "":
		b.WriteString(editorStatusStyle.Render(m.status))
	}
	return b.String()
}

func ptr[T any](v T) *T { return &v }

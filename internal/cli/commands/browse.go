package commands

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/session"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Browse version history interactively",
		Long: `Open an interactive picker over a document's version history.

Keys:
  enter    restore the selected version (current contents are versioned first)
  d        delete the selected version
  q / esc  quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			sess := cmdCtx.NewSession()
			if err := sess.Open(args[0]); err != nil {
				return err
			}
			records, err := sess.Versions()
			if err != nil {
				return err
			}

			m := newBrowseModel(args[0], sess, records)
			p := tea.NewProgram(m, tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				return err
			}

			if bm, ok := final.(browseModel); ok && bm.status != "" {
				cmdCtx.Renderer.Println(bm.status)
			}
			return nil
		},
	}
}

// versionItem adapts a version record to the list widget.
type versionItem struct {
	rec core.VersionRecord
}

func (i versionItem) Title() string { return i.rec.FileName }
func (i versionItem) Description() string {
	return fmt.Sprintf("%s  %s", i.rec.ModifiedAt.Format("2006-01-02 15:04:05"), formatSize(i.rec.SizeBytes))
}
func (i versionItem) FilterValue() string { return i.rec.FileName }

var browseStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)

type browseModel struct {
	path   string
	sess   *session.Session
	list   list.Model
	status string
	err    error
}

func newBrowseModel(path string, sess *session.Session, records []core.VersionRecord) browseModel {
	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = versionItem{rec: rec}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Versions of " + path
	l.SetShowStatusBar(false)

	return browseModel{path: path, sess: sess, list: l}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-1)
		return m, nil

	case tea.KeyMsg:
		// Let the list handle keys while filtering.
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case "enter":
			item, ok := m.list.SelectedItem().(versionItem)
			if !ok {
				return m, nil
			}
			if err := m.restore(item.rec); err != nil {
				m.err = err
				m.status = "restore failed: " + err.Error()
				return m, nil
			}
			m.status = "Restored " + item.rec.FileName
			return m, tea.Quit

		case "d":
			item, ok := m.list.SelectedItem().(versionItem)
			if !ok {
				return m, nil
			}
			if err := m.sess.Store().DeleteVersion(item.rec); err != nil {
				m.status = "delete failed: " + err.Error()
				return m, nil
			}
			m.list.RemoveItem(m.list.Index())
			m.status = "Deleted " + item.rec.FileName
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	view := m.list.View()
	if m.status != "" {
		view += "\n" + browseStatusStyle.Render(m.status)
	}
	return view
}

// restore versions the current contents, swaps in the selected
// version, and writes the document back to its file.
func (m browseModel) restore(rec core.VersionRecord) error {
	if _, err := m.sess.SaveVersion(); err != nil {
		return err
	}
	if err := m.sess.Restore(rec); err != nil {
		return err
	}
	return m.sess.Save()
}

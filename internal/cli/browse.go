package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"gadgetlift/internal/cli/colorize"
	"gadgetlift/internal/cli/styles"
	"gadgetlift/internal/il"
	"gadgetlift/internal/loader"
	"gadgetlift/internal/memregion"
	"gadgetlift/internal/runtime"
	"gadgetlift/internal/target"
)

var browseCmd = &cobra.Command{
	Use:   "browse [input]",
	Short: "Interactively browse a lift's IL blocks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().String("dump", "", "Path to a JSON region dump instead of a positional raw-binary input")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd, args)
	if err != nil {
		return err
	}

	var regions []memregion.Region
	path, isDump := cfg.InputPath()
	if isDump {
		regions, err = loader.DumpToRegions(path)
	} else {
		regions, err = loader.RawFileToRegions(path)
	}
	if err != nil {
		return err
	}

	tgt := target.FromRegions(regions)
	tgt.SetBaseAddress(cfg.BaseAddress)
	tgt.SetSpecPath(cfg.SLAPath)
	tgt.SetAlignment(cfg.Alignment)

	rt, err := runtime.New()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.LoadTarget(tgt); err != nil {
		return err
	}

	blocks, err := rt.PerformLift()
	if err != nil {
		return err
	}

	p := tea.NewProgram(newBrowseModel(blocks))
	_, err = p.Run()
	return err
}

// blockItem adapts an il.Block into a bubbles/v2 list.Item, the way the
// teacher's symbolItem adapts one ELF symbol.
type blockItem struct {
	block il.Block
}

func (i blockItem) Title() string {
	return fmt.Sprintf("%08x  %s", i.block.Address, i.block.Text)
}

func (i blockItem) FilterValue() string { return i.block.Text }

// blockDelegate renders blockItem rows, highlighting the selected one the
// way the teacher's itemDelegate highlights the selected symbol.
type blockDelegate struct{}

func (d blockDelegate) Height() int                               { return 1 }
func (d blockDelegate) Spacing() int                              { return 0 }
func (d blockDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d blockDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(blockItem)
	if !ok {
		return
	}
	line := fmt.Sprintf("0x%08x  %s", i.block.Address, i.block.Text)
	if index == m.Index() {
		line = lipgloss.NewStyle().Reverse(true).Render(line)
	}
	fmt.Fprint(w, line)
}

type browseModel struct {
	blocks []il.Block
	list   list.Model
	detail viewport.Model
	width  int
	height int
}

func newBrowseModel(blocks []il.Block) browseModel {
	items := make([]list.Item, len(blocks))
	for i, b := range blocks {
		items[i] = blockItem{block: b}
	}

	l := list.New(items, blockDelegate{}, 80, 24)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Title = "IL blocks"
	l.Styles.Title = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).MarginLeft(2)

	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	return browseModel{blocks: blocks, list: l, detail: vp, width: 80, height: 24}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		listWidth := m.width / 2
		m.list.SetWidth(listWidth)
		m.list.SetHeight(m.height - 1)
		m.detail.SetWidth(m.width - listWidth)
		m.detail.SetHeight(m.height - 1)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.syncDetail()
	return m, cmd
}

// syncDetail re-renders the detail viewport for whatever block the list's
// cursor currently sits on.
func (m *browseModel) syncDetail() {
	if len(m.blocks) == 0 {
		return
	}
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.blocks) {
		idx = 0
	}
	m.detail.SetContent(detailFor(m.blocks[idx], m.detail.Width()))
}

func (m browseModel) View() string {
	if len(m.blocks) == 0 {
		return "no blocks lifted\n"
	}
	m.syncDetail()
	columns := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.detail.View())
	return columns + "\nq: quit  /: filter  j/k: move\n"
}

func detailFor(b il.Block, width int) string {
	md := fmt.Sprintf("# 0x%08x\n\n- size: %d\n- ret: %v\n- jump: %v\n- call: %v\n- modifies_sp: %v\n",
		b.Address, b.Size, b.Summary.Ret, b.Summary.Jump, b.Summary.Call, b.Summary.ModifiesSP)

	if width <= 0 {
		width = 40
	}
	r := styles.GetMarkdownRenderer(width)
	rendered, err := r.Render(md)
	if err != nil {
		text, _ := colorize.ILText(b.Text)
		return text
	}
	return rendered
}

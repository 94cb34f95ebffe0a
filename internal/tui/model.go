package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/Mr-Dark-debug/lowcode/internal/analysis"
	"github.com/Mr-Dark-debug/lowcode/internal/assets"
	"github.com/Mr-Dark-debug/lowcode/internal/catalog"
	"github.com/Mr-Dark-debug/lowcode/internal/database"
	"github.com/Mr-Dark-debug/lowcode/internal/editor"
	"github.com/Mr-Dark-debug/lowcode/pkg/timeutil"
)

// ============================================================
// Pane focuses
// ============================================================

// Pane represents which UI pane currently has keyboard focus.
type Pane int

const (
	PaneTree Pane = iota
	PaneDetail
	PaneOverrides
)

// mode is the input mode of the editor screen.
type mode int

const (
	modeNormal mode = iota
	modePalette
	modeRename
	modeUpload
)

// paletteAction is what picking a type from the palette does.
type paletteAction int

const (
	actionAddRoot paletteAction = iota
	actionAddChild
	actionInsert
)

// ============================================================
// Model
// ============================================================

// Model is the root BubbleTea model for the lowcode editor.
// State is organized by concern; rendering is delegated
// to component functions in separate files.
type Model struct {
	store database.Store
	log   logrus.FieldLogger
	keys  keyMap

	// Data
	projects []*database.Project
	session  *editor.Session
	adapter  *database.ProjectAdapter
	assets   *assets.Registry
	rows     []treeRow
	openID   int64

	// UI state
	activePane      Pane
	mode            mode
	action          paletteAction
	cursor          int
	paletteCursor   int
	selectedProject int
	diffScroll      int
	width           int
	height          int
	showProjects    bool
	input           textinput.Model
	dirty           bool
	saving          bool
	confirmLeave    bool
	uploads         int

	// Status
	statusMsg string
	err       error
	now       func() time.Time
}

// NewModel creates a new TUI model backed by the given store. A nil log
// discards session logging.
func NewModel(store database.Store, log logrus.FieldLogger) Model {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	ti := textinput.New()
	ti.CharLimit = 256

	return Model{
		store:        store,
		log:          log,
		keys:         defaultKeyMap(),
		input:        ti,
		showProjects: true,
		statusMsg:    "Loading projects...",
		now:          time.Now,
	}
}

// Open makes the model load project id on start instead of waiting on
// the project list.
func (m Model) Open(id int64) Model {
	m.openID = id
	return m
}

// ============================================================
// Messages
// ============================================================

type projectsLoadedMsg []*database.Project
type projectLoadedMsg struct {
	session *editor.Session
	adapter *database.ProjectAdapter
}
type savedMsg struct {
	id      string
	swept   int
	pending []string
}
// assetIngestedMsg reports a finished upload. reg identifies the project
// the upload started in; results for another registry are dropped.
type assetIngestedMsg struct {
	reg    *assets.Registry
	nodeID string
	asset  *assets.LocalAsset
	err    error
}
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// ============================================================
// Init
// ============================================================

func (m Model) Init() tea.Cmd {
	if m.openID > 0 {
		return tea.Batch(m.loadProjects(), m.openProject(m.openID))
	}
	return m.loadProjects()
}

func (m Model) loadProjects() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		projects, err := store.ListProjects(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return projectsLoadedMsg(projects)
	}
}

func (m Model) openProject(id int64) tea.Cmd {
	store, log := m.store, m.log
	return func() tea.Msg {
		adapter := database.NewProjectAdapter(store, "", "")
		s := editor.NewSession(editor.WithLogger(log))
		if err := s.LoadFrom(context.Background(), adapter, database.FormatID(id)); err != nil {
			return errMsg{err}
		}
		return projectLoadedMsg{session: s, adapter: adapter}
	}
}

// save encodes the forest now and writes it in the background, so later
// edits cannot race the write. Assets no image points at are swept first,
// unless an upload is still waiting to attach its asset.
func (m Model) save() tea.Cmd {
	forest := m.session.Forest()
	swept := 0
	if m.uploads == 0 {
		swept = m.assets.SweepUnused()
	}
	report := analysis.Analyze(forest, m.assets)
	data, err := editor.MarshalForest(forest)
	adapter := m.adapter
	return func() tea.Msg {
		if err != nil {
			return errMsg{err}
		}
		id, err := adapter.Save(context.Background(), string(data))
		if err != nil {
			return errMsg{fmt.Errorf("saving project: %w", err)}
		}
		return savedMsg{id: id, swept: swept, pending: report.DanglingReferences}
	}
}

// upload ingests the file at path and attaches it to image nodeID once the
// payload is in the registry.
func (m Model) upload(nodeID, path string) tea.Cmd {
	reg := m.assets
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return assetIngestedMsg{reg: reg, nodeID: nodeID, err: err}
		}
		defer f.Close()

		a, err := reg.Ingest(context.Background(), f, filepath.Base(path), "").Wait()
		return assetIngestedMsg{reg: reg, nodeID: nodeID, asset: a, err: err}
	}
}

// ============================================================
// Update
// ============================================================

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case projectsLoadedMsg:
		m.projects = []*database.Project(msg)
		m.selectedProject = clamp(m.selectedProject, 0, max(len(m.projects)-1, 0))
		if m.showProjects {
			if len(m.projects) > 0 {
				m.statusMsg = fmt.Sprintf("%d projects", len(m.projects))
			} else {
				m.statusMsg = "No projects"
			}
		}
		return m, nil

	case projectLoadedMsg:
		m.session = msg.session
		m.adapter = msg.adapter
		m.assets = assets.NewRegistry(msg.session, assets.WithLogger(m.log))
		m.uploads = 0
		m.showProjects = false
		m.activePane = PaneTree
		m.mode = modeNormal
		m.cursor = 0
		m.dirty = false
		m.refresh()
		m.selectCursor()
		m.statusMsg = fmt.Sprintf("%d components", m.session.Len())
		return m, nil

	case savedMsg:
		m.saving = false
		m.dirty = false
		m.statusMsg = "Saved project " + msg.id
		if msg.swept > 0 {
			m.statusMsg += fmt.Sprintf(", dropped %d unused assets", msg.swept)
		}
		if len(msg.pending) > 0 {
			m.statusMsg += fmt.Sprintf(", %d images point at missing files", len(msg.pending))
		}
		return m, m.loadProjects()

	case assetIngestedMsg:
		if msg.reg != m.assets {
			m.log.WithField("node", msg.nodeID).Debug("dropping upload for a project that is no longer open")
			return m, nil
		}
		m.uploads = max(m.uploads-1, 0)
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.apply(m.session.UpdateProps(msg.nodeID, map[string]any{"src": msg.asset.ID}),
			fmt.Sprintf("Attached %s (%s, %s)", msg.asset.Filename, msg.asset.MimeType,
				timeutil.FormatBytes(int64(msg.asset.Size()))))
		return m, nil

	case errMsg:
		m.saving = false
		m.err = msg.err
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		return m, nil
	}

	if m.mode == modeRename || m.mode == modeUpload {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey routes keyboard input based on current mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeRename, modeUpload:
		return m.handleInputKey(msg)
	case modePalette:
		return m.handlePaletteKey(msg)
	}

	// ── Global ──

	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showProjects {
		return m.handleProjectKey(msg)
	}

	if key.Matches(msg, m.keys.Back) {
		if m.session.IsPreview() {
			m.session.TogglePreview()
			return m, nil
		}
		if m.dirty && !m.confirmLeave {
			m.confirmLeave = true
			m.statusMsg = "Unsaved changes: esc again to discard, ctrl+s to save"
			return m, nil
		}
		m.confirmLeave = false
		m.showProjects = true
		m.statusMsg = fmt.Sprintf("%d projects", len(m.projects))
		return m, m.loadProjects()
	}
	m.confirmLeave = false

	if key.Matches(msg, m.keys.Preview) {
		if m.session.TogglePreview() {
			m.statusMsg = "Preview"
		} else {
			m.statusMsg = "Editing"
			m.refresh()
		}
		return m, nil
	}
	if m.session.IsPreview() {
		return m, nil
	}

	if key.Matches(msg, m.keys.Save) {
		if m.saving {
			return m, nil
		}
		m.saving = true
		m.statusMsg = "Saving..."
		return m, m.save()
	}

	if key.Matches(msg, m.keys.Pane) {
		m.activePane = (m.activePane + 1) % 3
		return m, nil
	}

	return m.handleEditKey(msg)
}

func (m Model) handleProjectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedProject < len(m.projects)-1 {
			m.selectedProject++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedProject > 0 {
			m.selectedProject--
		}
	case key.Matches(msg, m.keys.Open):
		if m.selectedProject < len(m.projects) {
			return m, m.openProject(m.projects[m.selectedProject].ID)
		}
	case key.Matches(msg, m.keys.New):
		name := "Untitled " + m.now().Format("2006-01-02 15:04")
		return m.Update(projectLoadedMsg{
			session: editor.NewSession(editor.WithLogger(m.log)),
			adapter: database.NewProjectAdapter(m.store, name, ""),
		})
	}
	return m, nil
}

// handleEditKey applies tree edits to the session.
func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id, hasNode := m.currentID()

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.activePane == PaneOverrides {
			m.diffScroll++
			return m, nil
		}
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.selectCursor()
		}

	case key.Matches(msg, m.keys.Up):
		if m.activePane == PaneOverrides {
			m.diffScroll = max(m.diffScroll-1, 0)
			return m, nil
		}
		if m.cursor > 0 {
			m.cursor--
			m.selectCursor()
		}

	case key.Matches(msg, m.keys.AddRoot):
		m.openPalette(actionAddRoot)

	case key.Matches(msg, m.keys.AddChild):
		if hasNode {
			m.openPalette(actionAddChild)
		}

	case key.Matches(msg, m.keys.Insert):
		m.openPalette(actionInsert)

	case key.Matches(msg, m.keys.Delete):
		if hasNode {
			m.apply(m.session.DeleteNode(id), "Deleted "+id)
			m.selectCursor()
		}

	case key.Matches(msg, m.keys.Duplicate):
		if hasNode {
			n, res := m.session.DuplicateNode(id)
			if res.Ok() {
				m.apply(res, "Duplicated as "+n.ID)
			} else {
				m.apply(res, "")
			}
		}

	case key.Matches(msg, m.keys.MoveUp):
		if hasNode {
			m.apply(m.session.MoveUp(id), "Moved "+id+" up")
		}

	case key.Matches(msg, m.keys.MoveDown):
		if hasNode {
			m.apply(m.session.MoveDown(id), "Moved "+id+" down")
		}

	case key.Matches(msg, m.keys.Rename):
		if n, ok := m.session.Locate(id); hasNode && ok {
			cmd := m.openInput(modeRename, "name: ", n.Name)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Upload):
		if n, ok := m.session.Locate(id); hasNode && ok {
			if n.Type != catalog.TypeImage {
				m.statusMsg = "Only images take a file"
				return m, nil
			}
			cmd := m.openInput(modeUpload, "file: ", "")
			return m, cmd
		}

	case key.Matches(msg, m.keys.Clear):
		if m.session.Len() > 0 {
			m.session.ClearCanvas()
			m.dirty = true
			m.statusMsg = "Canvas cleared"
			m.refresh()
		}
	}

	return m, nil
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	types := m.session.Catalog().Types()

	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeNormal
	case key.Matches(msg, m.keys.Down):
		if m.paletteCursor < len(types)-1 {
			m.paletteCursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.paletteCursor > 0 {
			m.paletteCursor--
		}
	case key.Matches(msg, m.keys.Open):
		m.mode = modeNormal
		if m.paletteCursor >= len(types) {
			return m, nil
		}
		t := types[m.paletteCursor]

		var (
			n   *editor.Node
			res editor.Result
		)
		switch m.action {
		case actionAddChild:
			id, _ := m.currentID()
			n, res = m.session.AddChild(id, t)
		case actionInsert:
			n, res = m.session.InsertAt(t, m.rootIndex())
		default:
			n, res = m.session.AddNode(t, "")
		}
		if res.Ok() {
			m.apply(res, fmt.Sprintf("Added %s %s", t, n.ID))
		} else {
			m.apply(res, "")
		}
	}
	return m, nil
}

// handleInputKey drives the rename and upload prompts.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		submitted := m.mode
		m.mode = modeNormal
		m.input.Blur()
		value := strings.TrimSpace(m.input.Value())
		id, ok := m.currentID()
		if !ok || value == "" {
			return m, nil
		}
		if submitted == modeUpload {
			m.statusMsg = "Reading " + filepath.Base(value) + "..."
			m.uploads++
			return m, m.upload(id, value)
		}
		m.apply(m.session.Rename(id, value), "Renamed "+id)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ============================================================
// Session helpers
// ============================================================

// refresh rebuilds the visible rows and moves the cursor onto the
// selected node.
func (m *Model) refresh() {
	m.rows = flattenForest(m.session)
	if id, ok := m.session.SelectedID(); ok {
		if i := rowIndex(m.rows, id); i >= 0 {
			m.cursor = i
		}
	}
	m.cursor = clamp(m.cursor, 0, max(len(m.rows)-1, 0))
}

// selectCursor makes the node under the cursor the selection.
func (m *Model) selectCursor() {
	m.diffScroll = 0
	if id, ok := m.currentID(); ok {
		m.session.SelectComponent(id)
	}
}

func (m *Model) currentID() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return "", false
	}
	return m.rows[m.cursor].node.ID, true
}

// apply records the outcome of a mutation.
func (m *Model) apply(res editor.Result, okMsg string) {
	if res.Ok() {
		m.dirty = true
		m.statusMsg = okMsg
	} else {
		m.statusMsg = "Error: " + res.String()
	}
	m.refresh()
}

func (m *Model) openInput(md mode, prompt, value string) tea.Cmd {
	m.mode = md
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) openPalette(action paletteAction) {
	m.mode = modePalette
	m.action = action
	m.paletteCursor = 0
}

// rootIndex is the root position of the top-level ancestor of the node
// under the cursor, or 0 when the page is empty.
func (m *Model) rootIndex() int {
	id, ok := m.currentID()
	if !ok {
		return 0
	}
	for {
		parent, ok := m.session.Parent(id)
		if !ok || parent == "" {
			break
		}
		id = parent
	}
	i, _ := m.session.Index(id)
	return i
}

// ============================================================
// View
// ============================================================

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	footer := renderFooter(&m)

	bodyHeight := m.height - 2 // header + footer

	var body string
	switch {
	case m.showProjects:
		body = renderProjectList(&m)
	case m.session.IsPreview():
		body = renderPreview(&m, m.width, bodyHeight)
	case m.mode == modePalette:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, renderPalette(&m))
	default:
		body = m.renderMainLayout(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderMainLayout assembles the three-pane editor view.
func (m Model) renderMainLayout(totalHeight int) string {
	// Responsive: collapse to single pane on narrow terminals
	if m.width < 60 {
		return m.renderCompactLayout(totalHeight)
	}

	// Split proportions
	leftWidth := m.width * 45 / 100
	rightWidth := m.width - leftWidth
	topHeight := totalHeight * 65 / 100
	bottomHeight := totalHeight - topHeight

	tree := renderTreePanel(&m, leftWidth, topHeight)
	detail := renderDetailPanel(&m, rightWidth, topHeight)
	diff := renderDiffPanel(&m, m.width, bottomHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, tree, detail)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, diff)
}

// renderCompactLayout is used when the terminal is narrow (< 60 cols).
// Only the focused pane is shown.
func (m Model) renderCompactLayout(totalHeight int) string {
	switch m.activePane {
	case PaneDetail:
		return renderDetailPanel(&m, m.width, totalHeight)
	case PaneOverrides:
		return renderDiffPanel(&m, m.width, totalHeight)
	default:
		return renderTreePanel(&m, m.width, totalHeight)
	}
}

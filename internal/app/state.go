package app

// ViewMode is the top-level screen being shown
type ViewMode int

const (
	NormalMode ViewMode = iota
	HelpMode
)

// PanelType identifies a main panel
type PanelType int

const (
	TreePanel PanelType = iota
	PreviewPanel
)

// AppState holds layout and focus state
type AppState struct {
	ViewMode       ViewMode
	FocusedPanel   PanelType
	Width          int
	Height         int
	TreeWidthRatio int // percent of the width given to the tree
}

// NewAppState returns the initial state
func NewAppState() AppState {
	return AppState{
		ViewMode:       NormalMode,
		FocusedPanel:   TreePanel,
		Width:          80,
		Height:         24,
		TreeWidthRatio: 55,
	}
}

package preview

// Trigger names the event that caused a render.
type Trigger string

const (
	TriggerOpen        Trigger = "open"
	TriggerSwitchFile  Trigger = "switch-file"
	TriggerModify      Trigger = "modify"
	TriggerThemeChange Trigger = "theme-change"
)

// ResetsScroll reports whether the page should scroll back to the top.
func (t Trigger) ResetsScroll() bool {
	return t != TriggerModify
}

// Message types pushed over the WebSocket.
const (
	TypeRender = "render"
	TypeThemes = "themes"
)

// RenderMessage carries converted HTML to the page. HTML is empty when no
// note is active.
type RenderMessage struct {
	Type        string  `json:"type"`
	Trigger     Trigger `json:"trigger"`
	Path        string  `json:"path"`
	Theme       string  `json:"theme"`
	HTML        string  `json:"html"`
	ResetScroll bool    `json:"resetScroll"`
	Error       string  `json:"error,omitempty"`
}

// ThemesMessage tells pages to reload the theme list.
type ThemesMessage struct {
	Type    string `json:"type"`
	Default string `json:"default"`
}

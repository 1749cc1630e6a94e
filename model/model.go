package model

import (
	"themeplane/theme"
)

// OptionsRequest is the body of POST /api/options.
type OptionsRequest struct {
	Use theme.Option `json:"use"`
}

type OptionsResponse struct {
	Tokens    []string `json:"tokens"`
	ClassName string   `json:"className"`
}

// ColorsRequest is the body of POST /api/colors.
type ColorsRequest struct {
	Options   theme.Entries `json:"options"`
	Style     theme.Entries `json:"style,omitempty"`
	TextTones bool          `json:"textTones,omitempty"`
}

type ColorsResponse struct {
	Vars *theme.Vars `json:"vars"`
	CSS  string      `json:"css"`
}

type PresetList struct {
	Presets []string `json:"presets"`
}

// WSRequest is one WebSocket message. A message carrying "use" resolves
// option tokens; otherwise "options" and "style" resolve colors.
type WSRequest struct {
	ID        string        `json:"id"`
	Use       *theme.Option `json:"use,omitempty"`
	Options   theme.Entries `json:"options,omitempty"`
	Style     theme.Entries `json:"style,omitempty"`
	TextTones bool          `json:"textTones,omitempty"`
}

// WSResponse answers exactly one WSRequest with the same ID.
type WSResponse struct {
	ID     string      `json:"id"`
	Type   string      `json:"type"`
	Tokens []string    `json:"tokens,omitempty"`
	Class  string      `json:"className,omitempty"`
	Vars   *theme.Vars `json:"vars,omitempty"`
	CSS    string      `json:"css,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// gameshow/service/payload.go
package service

import "strconv"

// StartRequest carries the fields of an inbound /start slash command after
// token verification.
type StartRequest struct {
	TeamID      string
	ChannelID   string
	UserID      string // the host
	ResponseURL string
	Text        string // free text, may carry explicit <@U...> mentions
}

// IDField is the {id} object Slack nests team/channel/user ids in.
type IDField struct {
	ID string `json:"id"`
}

// SelectedOption is the chosen entry of a static_select action.
type SelectedOption struct {
	Value string `json:"value"`
}

// Action is one element of an interactive payload's actions array.
type Action struct {
	ActionID       string          `json:"action_id"`
	Value          string          `json:"value"`
	SelectedOption *SelectedOption `json:"selected_option,omitempty"`
}

// ActionPayload is the JSON carried in the `payload` form field of an
// inbound /action webhook.
type ActionPayload struct {
	Token       string   `json:"token"`
	ResponseURL string   `json:"response_url"`
	Team        IDField  `json:"team"`
	Channel     IDField  `json:"channel"`
	User        IDField  `json:"user"`
	Actions     []Action `json:"actions"`
}

// ActionName returns the identifier used for dispatch. The action_id is
// preferred; legacy payloads only carry the button value.
func (p *ActionPayload) ActionName() string {
	if len(p.Actions) == 0 {
		return ""
	}
	if p.Actions[0].ActionID != "" {
		return p.Actions[0].ActionID
	}
	return p.Actions[0].Value
}

// SelectedPoints returns the host-selected point value of the first action,
// falling back to 1 when nothing usable was selected.
func (p *ActionPayload) SelectedPoints() int {
	if len(p.Actions) == 0 || p.Actions[0].SelectedOption == nil {
		return 1
	}
	points, err := strconv.Atoi(p.Actions[0].SelectedOption.Value)
	if err != nil || points <= 0 {
		return 1
	}
	return points
}

// gameshow/messages/catalog_test.go
package messages

import (
	"encoding/json"
	"strconv"
	"testing"
)

func TestScoreSheetDeterministic(t *testing.T) {
	scores := map[string]int{"U3": 2, "U1": 5, "U2": 2}

	first, err := json.Marshal(ScoreSheet(scores, StatusContinue))
	if err != nil {
		t.Fatalf("Failed to marshal first render: %v", err)
	}
	second, err := json.Marshal(ScoreSheet(scores, StatusContinue))
	if err != nil {
		t.Fatalf("Failed to marshal second render: %v", err)
	}

	if string(first) != string(second) {
		t.Errorf("Renderings differ:\n%s\n%s", first, second)
	}
}

func TestScoreSheetOrdering(t *testing.T) {
	scores := map[string]int{"UC": 1, "UA": 1, "UB": 3}

	msg := ScoreSheet(scores, StatusContinue)

	// Header, three score lines, footer.
	if len(msg.Blocks) != 5 {
		t.Fatalf("Expected 5 blocks, got %d", len(msg.Blocks))
	}

	want := []string{"*<@UB>*: 3", "*<@UA>*: 1", "*<@UC>*: 1"}
	for i, expected := range want {
		got := msg.Blocks[i+1].Text.Text
		if got != expected {
			t.Errorf("Score line %d: expected %q, got %q", i, expected, got)
		}
	}
}

func TestScoreSheetStatus(t *testing.T) {
	scores := map[string]int{"UA": 0}

	tests := []struct {
		status     GameStatus
		header     string
		footerType string
	}{
		{StatusStart, "A new GameShow has been started for the following users:", "actions"},
		{StatusContinue, "Current scores:", "actions"},
		{StatusWaiting, "Waiting for the next buzz. Current scores:", "actions"},
		{StatusFinish, "GameShow ended. Here are the final scores:", "section"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			msg := ScoreSheet(scores, tt.status)

			if got := msg.Blocks[0].Text.Text; got != tt.header {
				t.Errorf("Header: expected %q, got %q", tt.header, got)
			}

			footer := msg.Blocks[len(msg.Blocks)-1]
			if footer.Type != tt.footerType {
				t.Errorf("Footer type: expected %q, got %q", tt.footerType, footer.Type)
			}
			if tt.status == StatusFinish {
				if footer.Text.Text != "Congratulations to the winner!" {
					t.Errorf("Finish footer: got %q", footer.Text.Text)
				}
			} else {
				if len(footer.Elements) != 2 {
					t.Fatalf("Expected 2 footer buttons, got %d", len(footer.Elements))
				}
				if footer.Elements[0].ActionID != ActionNextQuestion || footer.Elements[1].ActionID != ActionFinishGame {
					t.Errorf("Unexpected footer actions: %s, %s", footer.Elements[0].ActionID, footer.Elements[1].ActionID)
				}
			}
		})
	}
}

func TestBuzzerCarriesBuzzAction(t *testing.T) {
	msg := Buzzer()

	if len(msg.Blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(msg.Blocks))
	}
	buzzButton := msg.Blocks[1].Elements[0]
	if buzzButton.ActionID != ActionBuzz || buzzButton.Value != ActionBuzz {
		t.Errorf("Buzz button carries action %q / value %q", buzzButton.ActionID, buzzButton.Value)
	}
	if buzzButton.Style != "primary" {
		t.Errorf("Buzz button style: got %q", buzzButton.Style)
	}
}

func TestBuzzedNotificationControls(t *testing.T) {
	msg := BuzzedNotification("UABC")

	if got := msg.Blocks[0].Text.Text; got != "*<@UABC>* buzzed in first!" {
		t.Errorf("Unexpected notification text: %q", got)
	}

	controls := msg.Blocks[1].Elements
	if len(controls) != 3 {
		t.Fatalf("Expected 3 controls, got %d", len(controls))
	}

	selector := controls[0]
	if selector.Type != "static_select" || selector.ActionID != ActionAllocatePoints {
		t.Errorf("Point selector: type %q, action %q", selector.Type, selector.ActionID)
	}
	if len(selector.Options) != 5 {
		t.Fatalf("Expected 5 point options, got %d", len(selector.Options))
	}
	for i, opt := range selector.Options {
		if want := strconv.Itoa(i + 1); opt.Value != want {
			t.Errorf("Option %d value: expected %q, got %q", i, want, opt.Value)
		}
	}

	if controls[1].ActionID != ActionAnswerCorrect {
		t.Errorf("Correct button action: got %q", controls[1].ActionID)
	}
	if controls[2].ActionID != ActionAnswerWrong {
		t.Errorf("Wrong button action: got %q", controls[2].ActionID)
	}
}

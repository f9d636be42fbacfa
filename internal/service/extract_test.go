package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/timmy/memegen/internal/config"
	"github.com/timmy/memegen/internal/domain"
)

func TestExtractCaptions(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   domain.Caption
		wantOK bool
	}{
		{
			name:   "quoted top line",
			raw:    "Top text: 'Hello' \nBottom text: World",
			want:   domain.Caption{Top: "Hello", Bottom: "World"},
			wantOK: true,
		},
		{
			name: "echoed example then real answer",
			raw: "EXAMPLE:\nTop text: When you code all night\nBottom text: And it finally works\n\n" +
				"Top text: Me asking for one cat\nBottom text: The shelter sending twelve",
			want:   domain.Caption{Top: "Me asking for one cat", Bottom: "The shelter sending twelve"},
			wantOK: true,
		},
		{
			name:   "speaker prefix and double quotes",
			raw:    "Top text: \"Drake: not this\"\nBottom text: Drake: this instead",
			want:   domain.Caption{Top: "not this", Bottom: "this instead"},
			wantOK: true,
		},
		{
			name:   "labels embedded in prose",
			raw:    "Sure! Top text: Monday again\nand then Bottom text: Still tired",
			want:   domain.Caption{Top: "Monday again", Bottom: "Still tired"},
			wantOK: true,
		},
		{
			name:   "empty content after stripping still counts as found",
			raw:    "Top text: ''\nBottom text: ok",
			want:   domain.Caption{Top: "", Bottom: "ok"},
			wantOK: true,
		},
		{
			name:   "bold labels",
			raw:    "**Top text:** hi\n**Bottom text:** there",
			want:   domain.Caption{Top: "hi", Bottom: "there"},
			wantOK: true,
		},
		{
			name:   "bold content and quotes",
			raw:    "Top text: **\"Monday\"**\nBottom text: *again*",
			want:   domain.Caption{Top: "Monday", Bottom: "again"},
			wantOK: true,
		},
		{
			name:   "missing bottom label",
			raw:    "Top text: lonely line",
			wantOK: false,
		},
		{
			name:   "missing top label",
			raw:    "Bottom text: lonely line",
			wantOK: false,
		},
		{
			name:   "no labels",
			raw:    "here is a joke about cats",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCaptions(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("caption mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQualityGate(t *testing.T) {
	gate := NewQualityGate(config.DefaultBannedFragments)

	tests := []struct {
		text string
		bad  bool
	}{
		{"When the wifi drops", false},
		{"You MUST laugh", true},
		{"Follow the RULES", true},
		{"DO NOT do this", true},
		{"Top text here", true},
		{"Second line of joke", true},
		{"Example of a joke", true},
		{"must is fine in lowercase", false},
		{"a deadline looms", true}, // "line" matches inside words
		{"", false},
	}
	for _, tt := range tests {
		if got := gate.IsBad(tt.text); got != tt.bad {
			t.Errorf("IsBad(%q) = %v, want %v", tt.text, got, tt.bad)
		}
	}

	if gate.Accepts(domain.Caption{Top: "fine", Bottom: "Only return this"}) {
		t.Error("a banned fragment in either line should reject the pair")
	}
	if gate.Accepts(domain.Caption{Top: "fine", Bottom: ""}) {
		t.Error("an empty line should reject the pair")
	}
	if !gate.Accepts(domain.Caption{Top: "Me at 3am", Bottom: "Still awake"}) {
		t.Error("clean pair should be accepted")
	}
}

func TestQualityGateIgnoresEmptyFragments(t *testing.T) {
	gate := NewQualityGate([]string{"", "STRICT"})
	if gate.IsBad("anything") {
		t.Error("empty fragment must not match everything")
	}
	if !gate.IsBad("STRICT mode") {
		t.Error("expected STRICT to be banned")
	}
}

func TestParseHumorScore(t *testing.T) {
	tests := []struct {
		reply string
		want  domain.HumorScore
	}{
		{"I'd say about an 8 out of 10", 8},
		{"8", 8},
		{"Score: 6/10", 6},
		{"10/10 would laugh again", 10},
		{"Maybe 3... no, 9", 9},
		{"It's a 10", 10},
		{"11 or 12", 0},
		{"0", 0},
		{"not funny", 0},
		{"", 0},
		{"version 2.5 of the joke gets a 7", 7},
		{"I'd give it a 6 on a scale from 1 to 10", 6},
		{"On a scale of 1 to 10, this is a 4", 4},
		{"6 (1-10)", 6},
		{"6 (scale 1 - 10)", 6},
		{"Rating 1–10: 5", 5},
		{"on a scale from 1 to 10", 0},
	}
	for _, tt := range tests {
		got := ParseHumorScore(tt.reply)
		if got != tt.want {
			t.Errorf("ParseHumorScore(%q) = %d, want %d", tt.reply, got, tt.want)
		}
		if got < domain.MinHumorScore || got > domain.MaxHumorScore {
			t.Errorf("ParseHumorScore(%q) = %d out of range", tt.reply, got)
		}
	}
}

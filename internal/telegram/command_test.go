package telegram

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text    string
		wantCmd Command
		wantArg string
	}{
		{"/balance", CommandBalance, ""},
		{"/transactions", CommandTransactions, ""},
		{"/info", CommandInfo, ""},
		{"/help", CommandHelp, ""},
		{"/ban scamword", CommandBan, "scamword"},
		{"/ban two words", CommandBan, "two words"},
		{"/balance@satwatch_bot", CommandBalance, ""},
		{"/BALANCE", CommandBalance, ""},
		{"  /balance  ", CommandBalance, ""},
		{"/dance", CommandUnknown, ""},
		{"hello there", CommandUnknown, ""},
		{"", CommandUnknown, ""},
		{"/", CommandUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, arg := ParseCommand(tt.text)
			if cmd != tt.wantCmd {
				t.Fatalf("ParseCommand(%q) cmd = %v, want %v", tt.text, cmd, tt.wantCmd)
			}
			if arg != tt.wantArg {
				t.Fatalf("ParseCommand(%q) arg = %q, want %q", tt.text, arg, tt.wantArg)
			}
		})
	}
}

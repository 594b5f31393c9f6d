package tui

import (
	"testing"
)

func TestValidateServerURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain http", "http://localhost:8088", false},
		{"https with host", "https://ksql.example.com", false},
		{"missing scheme", "localhost:8088", true},
		{"wrong scheme", "ftp://localhost:8088", true},
		{"scheme only", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateServerURL(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.input, err)
			}
		})
	}
}

func TestWizardField_CheckRequired(t *testing.T) {
	m := newWizardModel(InitAnswers{})

	if err := m.fields[0].check(); err == nil {
		t.Error("empty server url must not validate")
	}

	m.fields[0].input.SetValue("http://localhost:8088")
	if err := m.fields[0].check(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Optional fields validate only when non-empty.
	if err := m.fields[1].check(); err != nil {
		t.Errorf("empty username should be fine: %v", err)
	}
	m.fields[2].input.SetValue("sometimes")
	if err := m.fields[2].check(); err == nil {
		t.Error("bad offset reset value must not validate")
	}
}

func TestWizardModel_MoveStopsOnInvalid(t *testing.T) {
	m := newWizardModel(InitAnswers{})

	m = m.move(1)
	if m.focusIdx != 0 {
		t.Errorf("focus must stay on invalid field, got %d", m.focusIdx)
	}

	m.fields[0].input.SetValue("http://localhost:8088")
	m = m.move(1)
	if m.focusIdx != 1 {
		t.Errorf("expected focus 1, got %d", m.focusIdx)
	}

	m = m.move(-1)
	if m.focusIdx != 0 {
		t.Errorf("expected focus back at 0, got %d", m.focusIdx)
	}
}

func TestWizardModel_AnswersCarryDefaults(t *testing.T) {
	defaults := InitAnswers{
		ServerURL:   "https://ksql.internal:8088",
		Username:    "deployer",
		OffsetReset: "earliest",
		DropPause:   "15s",
	}

	m := newWizardModel(defaults)
	if !m.checkAll() {
		t.Fatal("defaults must validate")
	}
	if got := m.answers(); got != defaults {
		t.Errorf("expected %+v, got %+v", defaults, got)
	}
}

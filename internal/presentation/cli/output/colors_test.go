package output

import (
	"os"
	"testing"
)

func TestIsColorSupported(t *testing.T) {
	// Save original env and restore after test
	origNoColor := os.Getenv("NO_COLOR")
	origForceColor := os.Getenv("FORCE_COLOR")
	origTerm := os.Getenv("TERM")
	defer func() {
		if origNoColor != "" {
			os.Setenv("NO_COLOR", origNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
		if origForceColor != "" {
			os.Setenv("FORCE_COLOR", origForceColor)
		} else {
			os.Unsetenv("FORCE_COLOR")
		}
		os.Setenv("TERM", origTerm)
		ResetColorDetection()
	}()

	tests := []struct {
		name       string
		noColor    string
		forceColor string
		term       string
		want       bool
	}{
		{
			name:    "NO_COLOR set",
			noColor: "1",
			term:    "xterm-256color",
			want:    false,
		},
		{
			name:       "FORCE_COLOR overrides",
			forceColor: "1",
			term:       "",
			want:       true,
		},
		{
			name: "TERM dumb",
			term: "dumb",
			want: false,
		},
		{
			name: "TERM empty",
			term: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset detection before each test
			ResetColorDetection()

			// Set up environment
			os.Unsetenv("NO_COLOR")
			os.Unsetenv("FORCE_COLOR")
			os.Unsetenv("TERM")

			if tt.noColor != "" {
				os.Setenv("NO_COLOR", tt.noColor)
			}
			if tt.forceColor != "" {
				os.Setenv("FORCE_COLOR", tt.forceColor)
			}
			os.Setenv("TERM", tt.term)

			got := IsColorSupported()
			if got != tt.want {
				t.Errorf("IsColorSupported() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResetColorDetection(t *testing.T) {
	// Set up a known state
	os.Setenv("FORCE_COLOR", "1")
	defer os.Unsetenv("FORCE_COLOR")

	ResetColorDetection()

	// Check that color is supported after reset
	if !IsColorSupported() {
		t.Error("IsColorSupported() = false, want true after FORCE_COLOR=1")
	}

	// Now change environment and verify cache needs reset
	os.Unsetenv("FORCE_COLOR")
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	// Should still return cached value
	if !IsColorSupported() {
		t.Log("Cache was invalidated unexpectedly")
	}

	// Reset and verify new state
	ResetColorDetection()
	if IsColorSupported() {
		t.Error("IsColorSupported() = true, want false after NO_COLOR=1 and reset")
	}
}

func TestStyledTextHelpers(t *testing.T) {
	text := "sample"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"SuccessText", SuccessText, string(ColorGreen) + "✓ " + text + string(ColorReset)},
		{"ErrorText", ErrorText, string(ColorRed) + "✗ " + text + string(ColorReset)},
		{"WarningText", WarningText, string(ColorYellow) + "⚠ " + text + string(ColorReset)},
		{"HighlightText", HighlightText, string(ColorBold) + string(ColorCyan) + text + string(ColorReset)},
		{"MutedText", MutedText, string(ColorDim) + text + string(ColorReset)},
		{"BoldText", BoldText, string(ColorBold) + text + string(ColorReset)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(text); got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, text, got, tt.want)
			}
		})
	}
}

func TestColorIfEnabled(t *testing.T) {
	// Save and restore
	origNoColor := os.Getenv("NO_COLOR")
	origForceColor := os.Getenv("FORCE_COLOR")
	defer func() {
		if origNoColor != "" {
			os.Setenv("NO_COLOR", origNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
		if origForceColor != "" {
			os.Setenv("FORCE_COLOR", origForceColor)
		} else {
			os.Unsetenv("FORCE_COLOR")
		}
		ResetColorDetection()
	}()

	text := "colored text"

	// Test with colors forced on
	os.Unsetenv("NO_COLOR")
	os.Setenv("FORCE_COLOR", "1")
	ResetColorDetection()

	result := ColorIfEnabled(text, ColorRed)
	expected := string(ColorRed) + text + string(ColorReset)
	if result != expected {
		t.Errorf("ColorIfEnabled with color enabled = %q, want %q", result, expected)
	}

	// Test with colors disabled
	os.Unsetenv("FORCE_COLOR")
	os.Setenv("NO_COLOR", "1")
	ResetColorDetection()

	result = ColorIfEnabled(text, ColorRed)
	if result != text {
		t.Errorf("ColorIfEnabled with color disabled = %q, want %q", result, text)
	}
}

func TestConditionalTextFunctions(t *testing.T) {
	// Save and restore
	origNoColor := os.Getenv("NO_COLOR")
	origForceColor := os.Getenv("FORCE_COLOR")
	defer func() {
		if origNoColor != "" {
			os.Setenv("NO_COLOR", origNoColor)
		} else {
			os.Unsetenv("NO_COLOR")
		}
		if origForceColor != "" {
			os.Setenv("FORCE_COLOR", origForceColor)
		} else {
			os.Unsetenv("FORCE_COLOR")
		}
		ResetColorDetection()
	}()

	text := "test message"

	// Test with colors disabled
	os.Unsetenv("FORCE_COLOR")
	os.Setenv("NO_COLOR", "1")
	ResetColorDetection()

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"SuccessTextIfEnabled", SuccessTextIfEnabled, "✓ " + text},
		{"ErrorTextIfEnabled", ErrorTextIfEnabled, "✗ " + text},
		{"WarningTextIfEnabled", WarningTextIfEnabled, "⚠ " + text},
	}

	for _, tt := range tests {
		t.Run(tt.name+" (disabled)", func(t *testing.T) {
			result := tt.fn(text)
			if result != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, text, result, tt.want)
			}
		})
	}
}

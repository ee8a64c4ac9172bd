package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.Required("Name", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.Required("Name", "value")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_RangeDuration(t *testing.T) {
	tests := []struct {
		name      string
		value     time.Duration
		expectErr bool
	}{
		{"below range", 10 * time.Millisecond, true},
		{"at min", 100 * time.Millisecond, false},
		{"inside", time.Second, false},
		{"at max", time.Minute, false},
		{"above range", 2 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("TestConfig")
			cv.RangeDuration("Timeout", tt.value, 100*time.Millisecond, time.Minute)
			if cv.HasErrors() != tt.expectErr {
				t.Errorf("RangeDuration(%v) error = %v, want %v", tt.value, cv.HasErrors(), tt.expectErr)
			}
		})
	}
}

func TestConfigValidator_SourceLocation(t *testing.T) {
	tests := []struct {
		location  string
		expectErr bool
	}{
		{"", false},
		{"data/sampleData.json", false},
		{`C:\feeds\sampleData.json`, false},
		{"file:///srv/sampleData.json", false},
		{"file://", true},
		{"http://feeds.example/sampleData.json", false},
		{"https:///sampleData.json", true},
		{"s3://bucket/hostA/Request.json", false},
		{"s3://bucket/", true},
		{"ftp://feeds.example/sampleData.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			cv := NewConfigValidator("eyeball").SourceLocation("records_source", tt.location)
			if cv.HasErrors() != tt.expectErr {
				t.Errorf("SourceLocation(%q) error = %v, want %v", tt.location, cv.Validate(), tt.expectErr)
			}
		})
	}
}

func TestConfigValidator_Origins(t *testing.T) {
	if err := NewConfigValidator("eyeball").
		Origins("cors_origins", []string{"*", "https://ui.example", "http://localhost:3000/"}).
		Validate(); err != nil {
		t.Errorf("Expected origins to be accepted: %v", err)
	}

	cv := NewConfigValidator("eyeball").
		Origins("cors_origins", []string{"ui.example", "https://ui.example/app", "ws://ui.example"})
	if err := cv.Validate(); err == nil {
		t.Error("Expected malformed origins to be rejected")
	} else if got := strings.Count(err.Error(), "cors_origins"); got != 3 {
		t.Errorf("Expected 3 origin errors, got %d: %v", got, err)
	}
}

func TestConfigValidator_NonNegativeDuration(t *testing.T) {
	if !NewConfigValidator("C").NonNegativeDuration("Refresh", -time.Second).HasErrors() {
		t.Error("Expected negative duration to be rejected")
	}
	if NewConfigValidator("C").NonNegativeDuration("Refresh", 0).HasErrors() {
		t.Error("Expected zero duration to be accepted")
	}
}

func TestConfigValidator_CustomAndWhen(t *testing.T) {
	sentinel := errors.New("bad bucket")

	cv := NewConfigValidator("C").
		When(true, func(cv *ConfigValidator) {
			cv.Custom("Bucket", func() error { return sentinel })
		}).
		When(false, func(cv *ConfigValidator) {
			cv.Required("Never", "")
		})

	err := cv.Validate()
	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected wrapped sentinel, got %v", err)
	}
}

func TestConfigValidator_ValidateCombines(t *testing.T) {
	cv := NewConfigValidator("C").Required("A", "").Required("B", "")
	err := cv.Validate()
	if err == nil {
		t.Fatal("Expected combined error")
	}
	if msg := err.Error(); !strings.Contains(msg, "C.A") || !strings.Contains(msg, "C.B") {
		t.Errorf("Expected both field errors, got %q", msg)
	}
	if NewConfigValidator("C").Validate() != nil {
		t.Error("Empty validator should pass")
	}
}

func TestDefaultOr(t *testing.T) {
	if DefaultOr("", "x") != "x" {
		t.Error("DefaultOr should fall back on zero value")
	}
	if DefaultOr("y", "x") != "y" {
		t.Error("DefaultOr should keep non-zero value")
	}
	if DefaultOrDuration(0, time.Second) != time.Second {
		t.Error("DefaultOrDuration should fall back")
	}
}

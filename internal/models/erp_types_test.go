package models

import (
	"encoding/json"
	"testing"
)

func TestRemoteString_UnmarshalJSON(t *testing.T) {
	var rs RemoteString

	if err := json.Unmarshal([]byte(`"Retail"`), &rs); err != nil {
		t.Fatalf("Failed to unmarshal string: %v", err)
	}
	if rs != "Retail" {
		t.Errorf("Expected Retail, got %q", rs)
	}

	// The server sends false for empty text fields.
	if err := json.Unmarshal([]byte(`false`), &rs); err != nil {
		t.Fatalf("Failed to unmarshal false: %v", err)
	}
	if rs != "" {
		t.Errorf("false should decode to empty string, got %q", rs)
	}

	if err := json.Unmarshal([]byte(`123`), &rs); err == nil {
		t.Error("Numbers should not decode into RemoteString")
	}
}

func TestRemoteString_InStruct(t *testing.T) {
	var cust Customer
	payload := `{"customer_name": "Walk-in", "territory": false, "mobile_no": "+491701234567"}`

	if err := json.Unmarshal([]byte(payload), &cust); err != nil {
		t.Fatalf("Failed to decode customer row: %v", err)
	}
	if cust.CustomerName != "Walk-in" {
		t.Errorf("Wrong name: %q", cust.CustomerName)
	}
	if cust.Territory != "" {
		t.Errorf("false territory should be empty, got %q", cust.Territory)
	}
	if cust.MobileNo != "+491701234567" {
		t.Errorf("Wrong mobile: %q", cust.MobileNo)
	}
}

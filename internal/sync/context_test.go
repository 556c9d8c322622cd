package sync

import "testing"

func TestContext_Validate(t *testing.T) {
	sc := Context{InstanceID: "pos-01", CompanyID: "Main Store", FromDate: "2026-01-15"}
	if err := sc.Validate(); err != nil {
		t.Fatalf("Valid context rejected: %v", err)
	}

	if err := (Context{CompanyID: "Main Store"}).Validate(); err == nil {
		t.Error("Context without instance id must be rejected")
	}
	if err := (Context{InstanceID: "pos-01"}).Validate(); err == nil {
		t.Error("Context without company id must be rejected")
	}
	if err := (Context{InstanceID: "pos-01", CompanyID: "Main Store", FromDate: "15.01.2026"}).Validate(); err == nil {
		t.Error("Malformed from date must be rejected")
	}
}

func TestContext_Fingerprint(t *testing.T) {
	a := Context{InstanceID: "pos-01", CompanyID: "Main Store", TerritoryID: "North", PriceList: "Retail", WarehouseID: "Shop"}
	b := Context{InstanceID: "pos-02", CompanyID: "Main Store", TerritoryID: "North", PriceList: "Retail", WarehouseID: "Shop"}

	// The fingerprint identifies the catalog scope, not the device.
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Same scope on different devices should share a fingerprint")
	}

	c := a
	c.PriceList = "Wholesale"
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("Different price lists must produce different fingerprints")
	}
}

func TestContext_Since(t *testing.T) {
	if (Context{}).Since() != nil {
		t.Error("Empty from date should produce a nil window")
	}

	sc := Context{FromDate: "2026-03-01"}
	since := sc.Since()
	if since == nil {
		t.Fatal("Expected a parsed window")
	}
	if since.Year() != 2026 || int(since.Month()) != 3 || since.Day() != 1 {
		t.Errorf("Window parsed wrong: %v", since)
	}
}

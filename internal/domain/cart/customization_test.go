package cart

import "testing"

func TestCustomizationFingerprintKeyOrder(t *testing.T) {
	a := map[string]interface{}{
		"message": "Happy Birthday",
		"candles": true,
		"layers":  map[string]interface{}{"flavor": "chocolate", "count": 3},
	}
	b := map[string]interface{}{
		"layers":  map[string]interface{}{"count": 3, "flavor": "chocolate"},
		"candles": true,
		"message": "Happy Birthday",
	}

	if CustomizationFingerprint(a) != CustomizationFingerprint(b) {
		t.Fatal("expected identical fingerprints for payloads differing only in key order")
	}
}

func TestCustomizationFingerprintDistinguishesValues(t *testing.T) {
	a := map[string]interface{}{"message": "Happy Birthday"}
	b := map[string]interface{}{"message": "Congratulations"}

	if CustomizationFingerprint(a) == CustomizationFingerprint(b) {
		t.Fatal("expected different fingerprints for different values")
	}
}

func TestCustomizationFingerprintEmpty(t *testing.T) {
	if got := CustomizationFingerprint(nil); got != "" {
		t.Fatalf("expected empty fingerprint for nil payload, got %q", got)
	}
	if got := CustomizationFingerprint(map[string]interface{}{}); got != "" {
		t.Fatalf("expected empty fingerprint for empty payload, got %q", got)
	}
}

func TestCustomizationFingerprintNestedLists(t *testing.T) {
	a := map[string]interface{}{"toppings": []interface{}{"almond", "berry"}}
	b := map[string]interface{}{"toppings": []interface{}{"berry", "almond"}}

	// List order is meaningful, unlike map key order
	if CustomizationFingerprint(a) == CustomizationFingerprint(b) {
		t.Fatal("expected list order to affect the fingerprint")
	}
}

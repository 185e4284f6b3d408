package canon

import "testing"

func TestCanonicalize_StableKey(t *testing.T) {
	_, _, _, _, k1 := Canonicalize("12 Example Street", "Fitzroy", "Victoria", "3065")
	_, _, _, _, k2 := Canonicalize("12 example st.", " FITZROY ", "vic", "3065")
	if k1 != k2 {
		t.Errorf("expected equal keys, got %q and %q", k1, k2)
	}
	if k1 != "12 example st|fitzroy|vic|3065" {
		t.Errorf("unexpected key %q", k1)
	}
}

func TestCanonicalize_IgnoresUnit(t *testing.T) {
	_, _, _, _, k1 := Canonicalize("2/14 High Street", "Kew", "VIC", "3101")
	_, _, _, _, k2 := Canonicalize("14 High St", "Kew", "VIC", "3101")
	if k1 != k2 {
		t.Errorf("unit should not change key: %q vs %q", k1, k2)
	}
}

func TestFreeformKey_MatchesCanonicalize(t *testing.T) {
	_, _, _, _, want := Canonicalize("12 Example Street", "Fitzroy", "VIC", "3065")
	got := FreeformKey("12 Example Street, Fitzroy VIC 3065")
	if got != want {
		t.Errorf("freeform key %q, structured key %q", got, want)
	}
}

func TestFreeformKey_StableAcrossVariants(t *testing.T) {
	k1 := FreeformKey("12 Example Street, Fitzroy VIC 3065")
	k2 := FreeformKey("12 example st., Fitzroy vic 3065")
	if k1 != k2 {
		t.Errorf("expected equal keys, got %q and %q", k1, k2)
	}
}

func TestFreeformKey_NoPostcode(t *testing.T) {
	k1 := FreeformKey("12 Example Street, Fitzroy")
	k2 := FreeformKey("12 example st, FITZROY")
	if k1 != k2 {
		t.Errorf("expected equal keys, got %q and %q", k1, k2)
	}
}

func TestFormattedAddress(t *testing.T) {
	got := FormattedAddress("12 Example St", "Fitzroy", "vic", "3065")
	want := "12 Example St, Fitzroy VIC 3065"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

package claimlint

import "testing"

func TestLint_CatchmentClaim(t *testing.T) {
	res := Lint("This home is in catchment for Example Primary")
	if res.Passed {
		t.Fatal("expected lint to fail")
	}
	if len(res.Issues) != 1 {
		t.Fatalf("expected exactly 1 issue, got %d", len(res.Issues))
	}
	if res.Issues[0].Rule != "school_catchment" {
		t.Errorf("expected rule school_catchment, got %s", res.Issues[0].Rule)
	}
}

func TestLint_CleanCopyPasses(t *testing.T) {
	res := Lint("A light-filled family home close to parks and transport.")
	if !res.Passed {
		t.Errorf("expected clean copy to pass, got issues %v", res.Issues)
	}
	if len(res.Issues) != 0 {
		t.Errorf("expected empty issues, got %v", res.Issues)
	}
}

func TestLint_AllRulesEvaluated(t *testing.T) {
	copy := "In catchment, heritage-free, a 5 minute walk, and a bargain guarantee."
	res := Lint(copy)
	if len(res.Issues) != 4 {
		t.Fatalf("expected all 4 rules to fire, got %d: %v", len(res.Issues), res.Issues)
	}
	want := []string{"school_catchment", "heritage_free", "walk_time_abs", "price_claims"}
	for i, w := range want {
		if res.Issues[i].Rule != w {
			t.Errorf("issue %d: expected %s, got %s", i, w, res.Issues[i].Rule)
		}
	}
}

func TestLint_WalkTimeVariants(t *testing.T) {
	for _, s := range []string{"3 minute walk", "10-minute walk", "a 7 - minute walk away"} {
		if Lint(s).Passed {
			t.Errorf("expected %q to be flagged", s)
		}
	}
}

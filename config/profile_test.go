package config

import "testing"

func TestLoadProfiles(t *testing.T) {
	doc := []byte(`
- name: loose
  case_ignore: true
  strsim_threshold: 0.6
- name: strict
  case_ignore: false
  squash: true
  separator: ";"
`)
	set, err := LoadProfiles(doc)
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}

	loose, err := set.Lookup("loose")
	if err != nil {
		t.Fatalf("Lookup(loose): %v", err)
	}
	if !loose.CaseIgnore || loose.StrsimThreshold != 0.6 {
		t.Errorf("loose profile: got %+v", loose)
	}

	strict, err := set.Lookup("strict")
	if err != nil {
		t.Fatalf("Lookup(strict): %v", err)
	}
	if !strict.Squash || strict.Separator != ";" {
		t.Errorf("strict profile: got %+v", strict)
	}
	if strict.StrsimThreshold != DefaultStrsimThreshold {
		t.Errorf("expected default threshold to be filled in, got %v", strict.StrsimThreshold)
	}

	if _, err := set.Lookup("missing"); err == nil {
		t.Fatalf("expected an error looking up a missing profile")
	}
}

func TestLoadProfilesRejectsMissingName(t *testing.T) {
	doc := []byte(`
- case_ignore: true
`)
	if _, err := LoadProfiles(doc); err == nil {
		t.Fatalf("expected an error for a profile without a name")
	}
}

package main

import "testing"

func TestUniversalResolverABIParses(t *testing.T) {
	abi, err := universalResolverABI()
	if err != nil {
		t.Fatalf("parse universal resolver ABI: %v", err)
	}
	for _, name := range []string{"resolver", "name"} {
		if _, ok := abi.Methods[name]; !ok {
			t.Errorf("expected method %q in parsed ABI", name)
		}
	}
}

func TestNameRegexAcceptsValidNames(t *testing.T) {
	valid := []string{"example.eth", "my-page.eth", "a1b2.eth"}
	for _, name := range valid {
		if !nameRE.MatchString(name) {
			t.Errorf("expected %q to match nameRE", name)
		}
	}
}

func TestNameRegexRejectsInvalidNames(t *testing.T) {
	invalid := []string{"Example.eth", "example.com", "example", "ex ample.eth", "example.eth.eth"}
	for _, name := range invalid {
		if nameRE.MatchString(name) {
			t.Errorf("expected %q to be rejected by nameRE", name)
		}
	}
}

func TestDefaultDataDirIsNonEmpty(t *testing.T) {
	if defaultDataDir() == "" {
		t.Error("defaultDataDir returned empty string")
	}
}

package mtl

import "testing"

func TestSchemeFromNameKnownEntries(t *testing.T) {
	cases := []struct {
		name string
		n    int
		kind HashKind
	}{
		{"SLH-DSA-MTL-SHAKE-128S", 16, HashSHAKE},
		{"SLH-DSA-MTL-SHA2-256F", 32, HashSHA2},
		{"SLH-DSA-MTL-SHAKE-192F", 24, HashSHAKE},
	}
	for _, c := range cases {
		s := SchemeFromName(c.name)
		if s == nil {
			t.Fatalf("SchemeFromName(%q) = nil, want entry", c.name)
		}
		if s.N != c.n {
			t.Errorf("%s: N = %d, want %d", c.name, s.N, c.n)
		}
		if s.Kind != c.kind {
			t.Errorf("%s: Kind = %v, want %v", c.name, s.Kind, c.kind)
		}
		if s.SIDLen != 8 {
			t.Errorf("%s: SIDLen = %d, want 8", c.name, s.SIDLen)
		}
	}
}

func TestSchemeFromNameUnknown(t *testing.T) {
	if s := SchemeFromName("SLH-DSA-MTL-NOPE"); s != nil {
		t.Fatalf("SchemeFromName(unknown) = %+v, want nil", s)
	}
}

func TestParamsFromName2ReturnsStructuredError(t *testing.T) {
	_, err := ParamsFromName2("bogus-algorithm")
	if err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
	mtlErr, ok := err.(Error)
	if !ok {
		t.Fatalf("error does not implement Error: %T", err)
	}
	if mtlErr.Status() != StatusBadAlgorithm {
		t.Fatalf("Status() = %v, want StatusBadAlgorithm", mtlErr.Status())
	}
}

func TestSchemeFromOIDRoundTrip(t *testing.T) {
	for _, s := range registry {
		got := SchemeFromOID(s.OID)
		if got == nil {
			t.Fatalf("SchemeFromOID(%v) = nil for registered scheme %s", s.OID, s.Name)
		}
		if got.Name != s.Name {
			t.Errorf("SchemeFromOID(%v).Name = %s, want %s", s.OID, got.Name, s.Name)
		}
	}
}

func TestRegistryOIDsAreUnique(t *testing.T) {
	seen := make(map[[6]byte]string)
	for _, s := range registry {
		if other, ok := seen[s.OID]; ok {
			t.Fatalf("OID %v shared by %s and %s", s.OID, other, s.Name)
		}
		seen[s.OID] = s.Name
	}
}

func TestListNamesCoversRegistry(t *testing.T) {
	names := ListNames()
	if len(names) != len(registry) {
		t.Fatalf("ListNames() returned %d names, want %d", len(names), len(registry))
	}
}

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const testCatalogJSON = `[
  {
    "id": "test-scheme",
    "name": "Test Scheme",
    "name_hi": "परीक्षण योजना",
    "description": "A scheme for tests.",
    "eligibility": "Everyone",
    "benefits": "Some benefits",
    "documents_required": "None",
    "how_to_apply": "Apply online",
    "category": "Testing",
    "implementing_agency": "Test Agency",
    "target_demographics": {
      "age": "18-40 years",
      "gender": "Female",
      "location": ["All"],
      "income": ["All"]
    }
  }
]`

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemes.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}
	return path
}

func TestFileStoreLoadSchemes(t *testing.T) {
	path := writeCatalogFile(t, testCatalogJSON)
	store := NewFileStore(path)

	schemes, err := store.LoadSchemes(context.Background())
	if err != nil {
		t.Fatalf("LoadSchemes failed: %v", err)
	}
	if len(schemes) != 1 {
		t.Fatalf("expected 1 scheme, got %d", len(schemes))
	}
	s := schemes[0]
	if s.ID != "test-scheme" || s.NameHi != "परीक्षण योजना" {
		t.Errorf("unexpected scheme fields: %+v", s)
	}
	// "gender": "Female" is a bare string and must decode as a single-element list.
	if len(s.TargetDemographics.Gender) != 1 || s.TargetDemographics.Gender[0] != "Female" {
		t.Errorf("gender list = %v, want [Female]", s.TargetDemographics.Gender)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := store.LoadSchemes(context.Background()); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestFileStoreMalformedJSON(t *testing.T) {
	path := writeCatalogFile(t, "{not json")
	store := NewFileStore(path)
	if _, err := store.LoadSchemes(context.Background()); err == nil {
		t.Error("expected error for malformed JSON, got nil")
	}
}

func TestLoadDerivesCriteria(t *testing.T) {
	path := writeCatalogFile(t, testCatalogJSON)
	cat := Load(context.Background(), NewFileStore(path))

	if cat.Len() != 1 {
		t.Fatalf("expected 1 scheme, got %d", cat.Len())
	}
	s := cat.Schemes()[0]
	if s.Criteria.AgeMin != 18 || s.Criteria.AgeMax != 40 {
		t.Errorf("derived age range = (%d, %d), want (18, 40)", s.Criteria.AgeMin, s.Criteria.AgeMax)
	}
	if len(s.Criteria.Genders) != 1 {
		t.Errorf("derived genders = %v, want [Female]", s.Criteria.Genders)
	}
}

func TestLoadFailureYieldsEmptyCatalog(t *testing.T) {
	cat := Load(context.Background(), NewFileStore("does-not-exist.json"))
	if cat.Len() != 0 {
		t.Errorf("expected empty catalog on load failure, got %d schemes", cat.Len())
	}
	if _, ok := cat.SchemeByID("anything"); ok {
		t.Error("empty catalog should not resolve scheme IDs")
	}
}

func TestSchemeByID(t *testing.T) {
	path := writeCatalogFile(t, testCatalogJSON)
	cat := Load(context.Background(), NewFileStore(path))

	if _, ok := cat.SchemeByID("test-scheme"); !ok {
		t.Error("expected to find test-scheme by ID")
	}
	if _, ok := cat.SchemeByID("unknown"); ok {
		t.Error("unexpected match for unknown ID")
	}
}

func TestNewStoreSelection(t *testing.T) {
	if _, err := NewStore(); err == nil {
		t.Error("expected error when no source configured")
	}

	st, err := NewStore(WithFile("schemes.json"))
	if err != nil {
		t.Fatalf("NewStore(WithFile) failed: %v", err)
	}
	if _, ok := st.(*FileStore); !ok {
		t.Errorf("expected *FileStore, got %T", st)
	}
}

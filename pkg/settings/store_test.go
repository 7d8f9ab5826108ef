package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	tempDir string
	store   *Store
}

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "settings-store-test")
	s.Require().NoError(err)
	s.tempDir = tempDir

	s.store = NewStore(filepath.Join(tempDir, "config", "settings.json"))
}

func (s *StoreTestSuite) TearDownTest() {
	os.RemoveAll(s.tempDir)
}

func (s *StoreTestSuite) TestMissingFileYieldsDefaults() {
	s.Equal("", s.store.APIKey())
	s.False(s.store.LiveUpload())

	settings, err := s.store.Load()
	s.Require().NoError(err)
	s.Equal(&Settings{}, settings)
}

func (s *StoreTestSuite) TestSaveAndReadBack() {
	err := s.store.Save(&Settings{ApiKey: "abc123", LiveUpload: true})
	s.Require().NoError(err)

	s.Equal("abc123", s.store.APIKey())
	s.True(s.store.LiveUpload())
}

func (s *StoreTestSuite) TestAPIKeyIsTrimmed() {
	err := s.store.Save(&Settings{ApiKey: "  abc123 \n"})
	s.Require().NoError(err)

	s.Equal("abc123", s.store.APIKey())
}

func (s *StoreTestSuite) TestReadsReflectLatestSave() {
	// The credential may be edited mid-session; every read must observe the
	// newest persisted value, never a cached one.
	s.Require().NoError(s.store.Save(&Settings{ApiKey: "first"}))
	s.Equal("first", s.store.APIKey())

	s.Require().NoError(s.store.Save(&Settings{ApiKey: "second", LiveUpload: true}))
	s.Equal("second", s.store.APIKey())
	s.True(s.store.LiveUpload())
}

func (s *StoreTestSuite) TestCorruptFileReadsAsUnset() {
	path := filepath.Join(s.tempDir, "config", "settings.json")
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0755))
	s.Require().NoError(os.WriteFile(path, []byte("{not json"), 0600))

	s.Equal("", s.store.APIKey())
	s.False(s.store.LiveUpload())

	_, err := s.store.Load()
	s.Error(err)
}

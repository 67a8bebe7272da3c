package marketdata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/pkg/errors"
)

type LoaderTestSuite struct {
	suite.Suite

	loader *Loader
	dir    string
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderTestSuite))
}

func (s *LoaderTestSuite) SetupTest() {
	s.loader = NewLoader(logger.NewNopLogger())
	s.dir = s.T().TempDir()
}

func (s *LoaderTestSuite) writeFile(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	return path
}

func (s *LoaderTestSuite) TestLoadRFC3339() {
	path := s.writeFile("ok.csv", `time,open,high,low,close,volume
2024-01-02T09:30:00Z,100,101,99,100.5,1200
2024-01-02T09:31:00Z,100.5,102,100,101.5,1400
`)

	series, err := s.loader.Load(path, "TEST")
	s.Require().NoError(err)
	s.Equal("TEST", series.Symbol)
	s.Equal(2, series.Len())
	s.InDelta(100.5, series.Bars[0].Close, 1e-12)
	s.Equal(time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), series.Bars[0].Time)
}

func (s *LoaderTestSuite) TestLoadUnixTimestamps() {
	path := s.writeFile("unix.csv", `time,open,high,low,close,volume
1704187800,100,101,99,100.5,1200
1704187860,100.5,102,100,101.5,1400
`)

	series, err := s.loader.Load(path, "TEST")
	s.Require().NoError(err)
	s.Equal(2, series.Len())
	s.Equal(int64(1704187800), series.Bars[0].Time.Unix())
}

func (s *LoaderTestSuite) TestMissingFile() {
	_, err := s.loader.Load(filepath.Join(s.dir, "absent.csv"), "TEST")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeDataSourceNotFound))
	s.True(errors.IsDataError(err))
}

func (s *LoaderTestSuite) TestBadTimestamp() {
	path := s.writeFile("badtime.csv", `time,open,high,low,close,volume
yesterday,100,101,99,100.5,1200
`)

	_, err := s.loader.Load(path, "TEST")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeDataParseFailed))
}

func (s *LoaderTestSuite) TestMalformedBarRejected() {
	path := s.writeFile("badbar.csv", `time,open,high,low,close,volume
2024-01-02T09:30:00Z,100,99,99,100.5,1200
`)

	// High below close violates the envelope.
	_, err := s.loader.Load(path, "TEST")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeMalformedBar))
}

func (s *LoaderTestSuite) TestOutOfOrderRejected() {
	path := s.writeFile("ooo.csv", `time,open,high,low,close,volume
2024-01-02T09:31:00Z,100,101,99,100.5,1200
2024-01-02T09:30:00Z,100.5,102,100,101.5,1400
`)

	_, err := s.loader.Load(path, "TEST")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNonMonotonicSeries))
}

func (s *LoaderTestSuite) TestEmptyFileRejected() {
	path := s.writeFile("empty.csv", "time,open,high,low,close,volume\n")

	_, err := s.loader.Load(path, "TEST")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeEmptySeries))
}
